package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/google/uuid"
)

// MockExpenseRepository is an in-memory ExpenseRepository for tests.
// Err, when set, is returned by every method.
type MockExpenseRepository struct {
	mu       sync.Mutex
	Expenses []domain.Expense
	Err      error
	// LastFilter records the filter of the latest FindByUser call.
	LastFilter domain.ExpenseFilter
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.insert(expense)
	return nil
}

func (m *MockExpenseRepository) SaveBatch(ctx context.Context, expenses []domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range expenses {
		m.insert(&expenses[i])
	}
	return nil
}

func (m *MockExpenseRepository) insert(expense *domain.Expense) {
	now := time.Now()
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	expense.CreatedAt = now
	expense.UpdatedAt = now
	m.Expenses = append(m.Expenses, *expense)
}

func (m *MockExpenseRepository) FindByUser(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}

	var result []domain.Expense
	for _, e := range m.Expenses {
		if e.UserID != userID {
			continue
		}
		if filter.Date != nil && !sameDay(e.Date, *filter.Date) {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, e := range m.Expenses {
		if e.ID == expenseID && e.UserID == userID {
			found := e
			return &found, nil
		}
	}
	return nil, financeErrors.ErrExpenseNotFound
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, e := range m.Expenses {
		if e.ID == expense.ID && e.UserID == expense.UserID {
			expense.UpdatedAt = time.Now()
			m.Expenses[i] = *expense
			return nil
		}
	}
	return financeErrors.ErrExpenseNotFound
}

func (m *MockExpenseRepository) Delete(ctx context.Context, userID, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, e := range m.Expenses {
		if e.ID == expenseID && e.UserID == userID {
			m.Expenses = append(m.Expenses[:i], m.Expenses[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrExpenseNotFound
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
