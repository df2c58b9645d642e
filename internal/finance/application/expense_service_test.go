package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/bhuvi12a/expense-tracker/internal/finance/infrastructure"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func input(description, amount, date string) domain.ExpenseInput {
	return domain.ExpenseInput{Description: description, Amount: json.RawMessage(amount), Date: date}
}

func TestExpenseService_CreateAndList(t *testing.T) {
	repo := &infrastructure.MockExpenseRepository{}
	service := NewExpenseService(repo, testLogger())
	ctx := context.Background()

	created, err := service.CreateExpense(ctx, "user-1", input("Groceries", `"19.999"`, "2024-06-10"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("20")))

	_, err = service.CreateExpense(ctx, "user-1", input("Cinema", `12.5`, "2024-06-12"))
	require.NoError(t, err)
	_, err = service.CreateExpense(ctx, "user-2", input("Not mine", `1000`, "2024-06-12"))
	require.NoError(t, err)

	list, err := service.ListExpenses(ctx, "user-1", domain.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, list.Expenses, 2)
	assert.Equal(t, "Cinema", list.Expenses[0].Description, "expenses should be sorted by date descending")
	assert.True(t, list.Total.Equal(decimal.RequireFromString("32.5")))

	onDay := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	list, err = service.ListExpenses(ctx, "user-1", domain.ExpenseFilter{Date: &onDay})
	require.NoError(t, err)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "Groceries", list.Expenses[0].Description)
}

func TestExpenseService_ListEmpty(t *testing.T) {
	service := NewExpenseService(&infrastructure.MockExpenseRepository{}, testLogger())

	list, err := service.ListExpenses(context.Background(), "nobody", domain.ExpenseFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list.Expenses)
	assert.Empty(t, list.Expenses)
	assert.True(t, list.Total.IsZero())
}

func TestExpenseService_CreateRejectsInvalidInput(t *testing.T) {
	repo := &infrastructure.MockExpenseRepository{}
	service := NewExpenseService(repo, testLogger())

	_, err := service.CreateExpense(context.Background(), "user-1", input("Refund", `-3`, "2024-06-10"))
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, repo.Expenses)
}

func TestExpenseService_ImportRejectsWholeBatch(t *testing.T) {
	repo := &infrastructure.MockExpenseRepository{}
	service := NewExpenseService(repo, testLogger())

	_, err := service.ImportExpenses(context.Background(), "user-1", []domain.ExpenseInput{
		input("Good", `1`, "2024-06-10"),
		input("Bad", `1`, "tomorrow"),
	})
	assert.ErrorIs(t, err, financeErrors.ErrInvalidExpenseData)
	assert.Empty(t, repo.Expenses)

	expenses, err := service.ImportExpenses(context.Background(), "user-1", []domain.ExpenseInput{
		input("Good", `1`, "2024-06-10"),
		input("Also good", `"2.25"`, "2024-06-11"),
	})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
	assert.Len(t, repo.Expenses, 2)
	for _, e := range expenses {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "user-1", e.UserID)
	}
}

func TestExpenseService_UpdateAndDeleteAreScopedToOwner(t *testing.T) {
	repo := &infrastructure.MockExpenseRepository{}
	service := NewExpenseService(repo, testLogger())
	ctx := context.Background()

	created, err := service.CreateExpense(ctx, "owner", input("Taxi", `15`, "2024-06-01"))
	require.NoError(t, err)

	_, err = service.UpdateExpense(ctx, "intruder", created.ID, input("Hacked", `0`, "2024-06-01"))
	assert.ErrorIs(t, err, financeErrors.ErrExpenseNotFound)
	assert.ErrorIs(t, service.DeleteExpense(ctx, "intruder", created.ID), financeErrors.ErrExpenseNotFound)

	updated, err := service.UpdateExpense(ctx, "owner", created.ID, input("Taxi home", `17.40`, "2024-06-02"))
	require.NoError(t, err)
	assert.Equal(t, "Taxi home", updated.Description)

	stored, err := service.GetExpense(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Taxi home", stored.Description)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("17.4")))
	assert.Equal(t, 2, stored.Date.Day())

	require.NoError(t, service.DeleteExpense(ctx, "owner", created.ID))
	_, err = service.GetExpense(ctx, "owner", created.ID)
	assert.ErrorIs(t, err, financeErrors.ErrExpenseNotFound)
}

func TestExpenseService_RepositoryErrorsAreWrapped(t *testing.T) {
	dbErr := errors.New("connection reset")
	service := NewExpenseService(&infrastructure.MockExpenseRepository{Err: dbErr}, testLogger())

	_, err := service.CreateExpense(context.Background(), "user-1", input("Taxi", `15`, "2024-06-01"))
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, financeErrors.IsValidationError(err))
}
