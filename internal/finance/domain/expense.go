package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	DateLayout           = "2006-01-02"
	MaxDescriptionLength = 200
)

type ExpenseRepository interface {
	Save(ctx context.Context, expense *Expense) error
	// SaveBatch stores all expenses in one transaction and sets their IDs.
	SaveBatch(ctx context.Context, expenses []Expense) error
	FindByUser(ctx context.Context, userID string, filter ExpenseFilter) ([]Expense, error)
	FindByID(ctx context.Context, userID, expenseID string) (*Expense, error)
	Update(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, userID, expenseID string) error
}

// ExpenseFilter narrows FindByUser. A nil bound means no bound.
type ExpenseFilter struct {
	Date *time.Time
	From *time.Time
}

type Expense struct {
	ID          string
	UserID      string
	Description string
	Amount      decimal.Decimal
	// Date is a calendar date, only year, month and day are meaningful.
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Expense) Validate() error {
	return e.validate(0)
}

func (e *Expense) validate(index int) error {
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return errors.NewInvalidExpenseData(index, "description", "is required")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return errors.NewInvalidExpenseData(index, "description", "must be at most 200 characters")
	}
	if _, err := NormalizeAmount(e.Amount); err != nil {
		return errors.NewInvalidExpenseData(index, "amount", err.Error())
	}
	if e.Date.IsZero() {
		return errors.NewInvalidExpenseData(index, "date", "is required")
	}
	return nil
}

// ExpenseInput is an expense as submitted by a client. Amount accepts both a
// JSON number and a numeric string.
type ExpenseInput struct {
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Date        string          `json:"date"`
}

// ParseExpenseInput turns raw input into a validated Expense. index is the
// 1-based batch position reported in errors, 0 for a single record.
func ParseExpenseInput(in ExpenseInput, index int) (Expense, error) {
	parsed, err := parseAmount(in.Amount)
	if err != nil {
		return Expense{}, errors.NewInvalidExpenseData(index, "amount", err.Error())
	}
	amount, err := NormalizeAmount(parsed)
	if err != nil {
		return Expense{}, errors.NewInvalidExpenseData(index, "amount", err.Error())
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return Expense{}, errors.NewInvalidExpenseData(index, "date", "must be a date in YYYY-MM-DD format")
	}

	expense := Expense{
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Date:        date,
	}
	if err := expense.validate(index); err != nil {
		return Expense{}, err
	}
	return expense, nil
}

// ParseExpenseInputs parses a batch, the first invalid record rejects all of them.
func ParseExpenseInputs(inputs []ExpenseInput) ([]Expense, error) {
	expenses := make([]Expense, 0, len(inputs))
	for i, in := range inputs {
		expense, err := ParseExpenseInput(in, i+1)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

type amountError string

func (e amountError) Error() string { return string(e) }

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	value := strings.TrimSpace(string(raw))
	if value == "" || value == "null" {
		return decimal.Decimal{}, amountError("is required")
	}
	if strings.HasPrefix(value, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, amountError("must be a number")
		}
		value = strings.TrimSpace(s)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, amountError("must be a number")
	}
	return amount, nil
}

// TotalAmount sums the amounts of expenses.
func TotalAmount(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
