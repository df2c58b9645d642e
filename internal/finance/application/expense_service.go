package application

import (
	"context"
	"fmt"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ExpenseService struct {
	repo   domain.ExpenseRepository
	logger *logrus.Logger
}

func NewExpenseService(repo domain.ExpenseRepository, logger *logrus.Logger) *ExpenseService {
	return &ExpenseService{repo: repo, logger: logger}
}

// ExpenseList is a page of expenses together with the sum of their amounts.
type ExpenseList struct {
	Expenses []domain.Expense
	Total    decimal.Decimal
}

func (s *ExpenseService) CreateExpense(ctx context.Context, userID string, input domain.ExpenseInput) (*domain.Expense, error) {
	expense, err := domain.ParseExpenseInput(input, 0)
	if err != nil {
		return nil, err
	}
	expense.UserID = userID

	if err := s.repo.Save(ctx, &expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"expense_id": expense.ID,
	}).Debug("Expense created")
	return &expense, nil
}

// ImportExpenses stores a batch atomically. One invalid record rejects the batch.
func (s *ExpenseService) ImportExpenses(ctx context.Context, userID string, inputs []domain.ExpenseInput) ([]domain.Expense, error) {
	expenses, err := domain.ParseExpenseInputs(inputs)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].UserID = userID
	}

	if err := s.repo.SaveBatch(ctx, expenses); err != nil {
		return nil, fmt.Errorf("failed to import expenses: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   len(expenses),
	}).Info("Expenses imported")
	return expenses, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) (*ExpenseList, error) {
	expenses, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return &ExpenseList{Expenses: expenses, Total: domain.TotalAmount(expenses)}, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	return s.repo.FindByID(ctx, userID, expenseID)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, expenseID string, input domain.ExpenseInput) (*domain.Expense, error) {
	parsed, err := domain.ParseExpenseInput(input, 0)
	if err != nil {
		return nil, err
	}

	expense, err := s.repo.FindByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	expense.Description = parsed.Description
	expense.Amount = parsed.Amount
	expense.Date = parsed.Date

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if err := s.repo.Delete(ctx, userID, expenseID); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"expense_id": expenseID,
	}).Debug("Expense deleted")
	return nil
}
