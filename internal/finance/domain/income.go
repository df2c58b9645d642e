package domain

import (
	"context"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// SettingsRepository stores the per-user income configuration and debt.
// Upserts create the row on first write.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*Settings, error)
	UpsertIncome(ctx context.Context, userID string, income IncomeConfig) error
	UpsertSalary(ctx context.Context, userID string, salary decimal.Decimal) error
	UpsertOtherIncome(ctx context.Context, userID string, otherIncome decimal.Decimal) error
	UpsertDebt(ctx context.Context, userID string, debt decimal.Decimal) error
}

type IncomeConfig struct {
	Salary      decimal.Decimal
	OtherIncome decimal.Decimal
}

func (c IncomeConfig) Total() decimal.Decimal {
	return c.Salary.Add(c.OtherIncome)
}

func (c IncomeConfig) Validate() error {
	if c.Salary.IsNegative() || c.OtherIncome.IsNegative() {
		return errors.ErrNegativeIncome
	}
	return nil
}

// Settings is the stored row; a user with no row has all values zero.
type Settings struct {
	UserID    string
	Income    IncomeConfig
	Debt      decimal.Decimal
	UpdatedAt time.Time
}
