package application

import (
	"context"
	"fmt"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type IncomeService struct {
	repo   domain.SettingsRepository
	logger *logrus.Logger
}

func NewIncomeService(repo domain.SettingsRepository, logger *logrus.Logger) *IncomeService {
	return &IncomeService{repo: repo, logger: logger}
}

func (s *IncomeService) GetIncome(ctx context.Context, userID string) (domain.IncomeConfig, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domain.IncomeConfig{}, fmt.Errorf("failed to load income: %w", err)
	}
	return settings.Income, nil
}

func (s *IncomeService) SetIncome(ctx context.Context, userID string, income domain.IncomeConfig) error {
	if err := income.Validate(); err != nil {
		return err
	}
	salary, err := normalize("salary", income.Salary, financeErrors.ErrNegativeIncome)
	if err != nil {
		return err
	}
	otherIncome, err := normalize("other_income", income.OtherIncome, financeErrors.ErrNegativeIncome)
	if err != nil {
		return err
	}
	income = domain.IncomeConfig{Salary: salary, OtherIncome: otherIncome}
	if err := s.repo.UpsertIncome(ctx, userID, income); err != nil {
		return fmt.Errorf("failed to save income: %w", err)
	}
	s.logger.WithField("user_id", userID).Debug("Income updated")
	return nil
}

func (s *IncomeService) SetSalary(ctx context.Context, userID string, salary decimal.Decimal) error {
	salary, err := normalize("salary", salary, financeErrors.ErrNegativeIncome)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertSalary(ctx, userID, salary); err != nil {
		return fmt.Errorf("failed to save salary: %w", err)
	}
	return nil
}

func (s *IncomeService) SetOtherIncome(ctx context.Context, userID string, otherIncome decimal.Decimal) error {
	otherIncome, err := normalize("other_income", otherIncome, financeErrors.ErrNegativeIncome)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertOtherIncome(ctx, userID, otherIncome); err != nil {
		return fmt.Errorf("failed to save other income: %w", err)
	}
	return nil
}

func (s *IncomeService) GetDebt(ctx context.Context, userID string) (decimal.Decimal, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load debt: %w", err)
	}
	return settings.Debt, nil
}

func (s *IncomeService) SetDebt(ctx context.Context, userID string, debt decimal.Decimal) error {
	debt, err := normalize("debt", debt, financeErrors.ErrNegativeDebt)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertDebt(ctx, userID, debt); err != nil {
		return fmt.Errorf("failed to save debt: %w", err)
	}
	return nil
}

// normalize rounds a stored value to cents, rejecting negative values with
// negative and out of range ones with a ValidationError naming field.
func normalize(field string, value decimal.Decimal, negative error) (decimal.Decimal, error) {
	if value.IsNegative() {
		return decimal.Decimal{}, negative
	}
	rounded, err := domain.NormalizeAmount(value)
	if err != nil {
		return decimal.Decimal{}, financeErrors.NewValidationError(fmt.Sprintf("%s %v", field, err))
	}
	return rounded, nil
}
