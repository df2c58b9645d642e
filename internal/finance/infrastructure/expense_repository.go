package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, user_id, description, amount, date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var e domain.Expense
	if err := row.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertExpense(ctx context.Context, q execQuerier, expense *domain.Expense) error {
	return q.QueryRowContext(ctx,
		`INSERT INTO expenses (user_id, description, amount, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		expense.UserID, expense.Description, expense.Amount, expense.Date.Format(domain.DateLayout),
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)
}

func (r *ExpenseRepository) Save(ctx context.Context, expense *domain.Expense) error {
	if err := insertExpense(ctx, r.db, expense); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) SaveBatch(ctx context.Context, expenses []domain.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range expenses {
		if err := insertExpense(ctx, tx, &expenses[i]); err != nil {
			return fmt.Errorf("insert expense %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func (r *ExpenseRepository) FindByUser(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Date != nil {
		args = append(args, filter.Date.Format(domain.DateLayout))
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, filter.From.Format(domain.DateLayout))
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return expense, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE expenses SET description = $1, amount = $2, date = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at`,
		expense.Description, expense.Amount, expense.Date.Format(domain.DateLayout), expense.ID, expense.UserID,
	).Scan(&expense.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return financeErrors.ErrExpenseNotFound
	}
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, expenseID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if affected == 0 {
		return financeErrors.ErrExpenseNotFound
	}
	return nil
}
