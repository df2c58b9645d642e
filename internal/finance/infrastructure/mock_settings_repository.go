package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

// MockSettingsRepository is an in-memory SettingsRepository for tests.
type MockSettingsRepository struct {
	mu       sync.Mutex
	Settings map[string]domain.Settings
	Err      error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Settings: make(map[string]domain.Settings)}
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	settings, ok := m.Settings[userID]
	if !ok {
		return &domain.Settings{UserID: userID}, nil
	}
	return &settings, nil
}

func (m *MockSettingsRepository) UpsertIncome(ctx context.Context, userID string, income domain.IncomeConfig) error {
	return m.update(userID, func(s *domain.Settings) { s.Income = income })
}

func (m *MockSettingsRepository) UpsertSalary(ctx context.Context, userID string, salary decimal.Decimal) error {
	return m.update(userID, func(s *domain.Settings) { s.Income.Salary = salary })
}

func (m *MockSettingsRepository) UpsertOtherIncome(ctx context.Context, userID string, otherIncome decimal.Decimal) error {
	return m.update(userID, func(s *domain.Settings) { s.Income.OtherIncome = otherIncome })
}

func (m *MockSettingsRepository) UpsertDebt(ctx context.Context, userID string, debt decimal.Decimal) error {
	return m.update(userID, func(s *domain.Settings) { s.Debt = debt })
}

func (m *MockSettingsRepository) update(userID string, apply func(s *domain.Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Settings == nil {
		m.Settings = make(map[string]domain.Settings)
	}
	settings, ok := m.Settings[userID]
	if !ok {
		settings = domain.Settings{UserID: userID}
	}
	apply(&settings)
	settings.UpdatedAt = time.Now()
	m.Settings[userID] = settings
	return nil
}
