package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	settings := &domain.Settings{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT salary, other_income, debt, updated_at FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&settings.Income.Salary, &settings.Income.OtherIncome, &settings.Debt, &settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Settings{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return settings, nil
}

func (r *SettingsRepository) UpsertIncome(ctx context.Context, userID string, income domain.IncomeConfig) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, salary, other_income)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET salary = EXCLUDED.salary, other_income = EXCLUDED.other_income, updated_at = NOW()`,
		userID, income.Salary, income.OtherIncome)
	if err != nil {
		return fmt.Errorf("upsert income: %w", err)
	}
	return nil
}

func (r *SettingsRepository) UpsertSalary(ctx context.Context, userID string, salary decimal.Decimal) error {
	return r.upsertColumn(ctx, userID, "salary", salary)
}

func (r *SettingsRepository) UpsertOtherIncome(ctx context.Context, userID string, otherIncome decimal.Decimal) error {
	return r.upsertColumn(ctx, userID, "other_income", otherIncome)
}

func (r *SettingsRepository) UpsertDebt(ctx context.Context, userID string, debt decimal.Decimal) error {
	return r.upsertColumn(ctx, userID, "debt", debt)
}

// upsertColumn only ever receives one of the fixed column names above.
func (r *SettingsRepository) upsertColumn(ctx context.Context, userID, column string, value decimal.Decimal) error {
	query := fmt.Sprintf(
		`INSERT INTO user_settings (user_id, %[1]s)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET %[1]s = EXCLUDED.%[1]s, updated_at = NOW()`, column)
	if _, err := r.db.ExecContext(ctx, query, userID, value); err != nil {
		return fmt.Errorf("upsert %s: %w", column, err)
	}
	return nil
}
