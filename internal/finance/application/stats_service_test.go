package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	"github.com/bhuvi12a/expense-tracker/internal/finance/infrastructure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStatsService(t *testing.T) (*StatsService, *infrastructure.MockExpenseRepository) {
	t.Helper()
	expenses := &infrastructure.MockExpenseRepository{
		Expenses: []domain.Expense{
			{ID: "1", UserID: "user-1", Description: "Groceries", Amount: decimal.NewFromInt(100), Date: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)},
			{ID: "2", UserID: "user-1", Description: "Fuel", Amount: decimal.NewFromInt(50), Date: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)},
			{ID: "3", UserID: "user-1", Description: "Rent", Amount: decimal.NewFromInt(200), Date: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)},
			{ID: "4", UserID: "user-2", Description: "Other user", Amount: decimal.NewFromInt(999), Date: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)},
		},
	}
	settings := infrastructure.NewMockSettingsRepository()
	require.NoError(t, settings.UpsertIncome(context.Background(), "user-1", domain.IncomeConfig{
		Salary:      decimal.NewFromInt(900),
		OtherIncome: decimal.NewFromInt(100),
	}))

	service := NewStatsService(expenses, settings, time.UTC, testLogger()).
		WithClock(func() time.Time { return time.Date(2024, time.June, 15, 20, 0, 0, 0, time.UTC) })
	return service, expenses
}

func TestStatsService_GetStats(t *testing.T) {
	service, expenses := seededStatsService(t)

	summary, err := service.GetStats(context.Background(), "user-1", nil)
	require.NoError(t, err)

	assert.True(t, summary.Daily.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.Weekly.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.Monthly.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(850)))
	assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.OtherIncome.Equal(decimal.NewFromInt(100)))
	require.True(t, summary.SpendingPercentage.Valid)
	assert.True(t, summary.SpendingPercentage.Decimal.Equal(decimal.NewFromInt(15)))

	require.NotNil(t, expenses.LastFilter.From)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), *expenses.LastFilter.From)
}

func TestStatsService_AsOf(t *testing.T) {
	service, expenses := seededStatsService(t)

	asOf := time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC)
	summary, err := service.GetStats(context.Background(), "user-1", &asOf)
	require.NoError(t, err)

	// June expenses lie in the future of the reference date and count in every bucket.
	assert.True(t, summary.Daily.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.Weekly.Equal(decimal.NewFromInt(350)))
	assert.True(t, summary.Monthly.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC), summary.ReferenceDate)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), *expenses.LastFilter.From)
}

func TestStatsService_NoIncome(t *testing.T) {
	expenses := &infrastructure.MockExpenseRepository{
		Expenses: []domain.Expense{
			{ID: "1", UserID: "user-1", Description: "Snack", Amount: decimal.NewFromInt(50), Date: time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC)},
		},
	}
	service := NewStatsService(expenses, infrastructure.NewMockSettingsRepository(), time.UTC, testLogger()).
		WithClock(func() time.Time { return time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC) })

	summary, err := service.GetStats(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.False(t, summary.SpendingPercentage.Valid)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(-50)))
}

func TestStatsService_UsesConfiguredLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	expenses := &infrastructure.MockExpenseRepository{
		Expenses: []domain.Expense{
			{ID: "1", UserID: "user-1", Description: "Sushi", Amount: decimal.NewFromInt(30), Date: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	// 20:00 UTC on 30 June is already 1 July in Tokyo.
	service := NewStatsService(expenses, infrastructure.NewMockSettingsRepository(), tokyo, testLogger()).
		WithClock(func() time.Time { return time.Date(2024, time.June, 30, 20, 0, 0, 0, time.UTC) })

	summary, err := service.GetStats(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.True(t, summary.Daily.Equal(decimal.NewFromInt(30)))
	assert.True(t, summary.Monthly.Equal(decimal.NewFromInt(30)))
}

func TestStatsService_RepositoryError(t *testing.T) {
	dbErr := errors.New("db unavailable")
	service := NewStatsService(&infrastructure.MockExpenseRepository{Err: dbErr}, infrastructure.NewMockSettingsRepository(), time.UTC, testLogger())

	_, err := service.GetStats(context.Background(), "user-1", nil)
	assert.ErrorIs(t, err, dbErr)
}
