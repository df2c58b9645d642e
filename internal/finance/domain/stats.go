package domain

import (
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// StatsSummary is derived from a user's expenses on every read.
type StatsSummary struct {
	Daily   decimal.Decimal
	Weekly  decimal.Decimal
	Monthly decimal.Decimal
	Balance decimal.Decimal
	// SpendingPercentage is invalid when total income is zero.
	SpendingPercentage decimal.NullDecimal
	OtherIncome        decimal.Decimal
	TotalIncome        decimal.Decimal
	ReferenceDate      time.Time
}

// StatsWindows are the inclusive lower bounds of the three buckets.
type StatsWindows struct {
	DayStart   time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// WindowsFor computes bucket bounds in the location of ref.
func WindowsFor(ref time.Time) StatsWindows {
	loc := ref.Location()
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	return StatsWindows{
		DayStart:   dayStart,
		WeekStart:  dayStart.AddDate(0, 0, -7),
		MonthStart: time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc),
	}
}

// Earliest is the lowest bound, expenses before it fall in no bucket.
func (w StatsWindows) Earliest() time.Time {
	if w.WeekStart.Before(w.MonthStart) {
		return w.WeekStart
	}
	return w.MonthStart
}

// ComputeStats buckets expenses relative to referenceInstant and derives the
// balance and spending percentage against totalIncome. A zero referenceInstant
// means now. The whole batch is validated before anything is summed.
func ComputeStats(expenses []Expense, referenceInstant time.Time, totalIncome decimal.Decimal) (StatsSummary, error) {
	if totalIncome.IsNegative() {
		return StatsSummary{}, errors.ErrNegativeIncome
	}
	for i := range expenses {
		if err := expenses[i].validateForStats(i + 1); err != nil {
			return StatsSummary{}, err
		}
	}

	if referenceInstant.IsZero() {
		referenceInstant = time.Now()
	}
	windows := WindowsFor(referenceInstant)
	loc := referenceInstant.Location()

	daily, weekly, monthly := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range expenses {
		date := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, loc)
		if !date.Before(windows.DayStart) {
			daily = daily.Add(e.Amount)
		}
		if !date.Before(windows.WeekStart) {
			weekly = weekly.Add(e.Amount)
		}
		if !date.Before(windows.MonthStart) {
			monthly = monthly.Add(e.Amount)
		}
	}

	summary := StatsSummary{
		Daily:         daily,
		Weekly:        weekly,
		Monthly:       monthly,
		Balance:       totalIncome.Sub(monthly),
		TotalIncome:   totalIncome,
		ReferenceDate: windows.DayStart,
	}
	if totalIncome.IsPositive() {
		summary.SpendingPercentage = decimal.NewNullDecimal(monthly.Mul(hundred).Div(totalIncome))
	}
	return summary, nil
}

// ComputeStatsForIncome runs ComputeStats with the total of income and
// reports its other income.
func ComputeStatsForIncome(expenses []Expense, referenceInstant time.Time, income IncomeConfig) (StatsSummary, error) {
	if err := income.Validate(); err != nil {
		return StatsSummary{}, err
	}
	summary, err := ComputeStats(expenses, referenceInstant, income.Total())
	if err != nil {
		return StatsSummary{}, err
	}
	summary.OtherIncome = income.OtherIncome
	return summary, nil
}

func (e *Expense) validateForStats(index int) error {
	if e.Amount.IsNegative() {
		return errors.NewInvalidExpenseData(index, "amount", "must not be negative")
	}
	if e.Date.IsZero() {
		return errors.NewInvalidExpenseData(index, "date", "is required")
	}
	return nil
}
