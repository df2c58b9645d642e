package interfaces

import (
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

// Money is always rendered with two decimal places.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type ExpenseResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toExpenseResponse(e domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      money(e.Amount),
		Date:        e.Date.Format(domain.DateLayout),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseResponses(expenses []domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = toExpenseResponse(e)
	}
	return responses
}

type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    string            `json:"total"`
	Count    int               `json:"count"`
}

type IncomeResponse struct {
	Salary      string `json:"salary"`
	OtherIncome string `json:"other_income"`
	TotalIncome string `json:"total_income"`
}

func toIncomeResponse(income domain.IncomeConfig) IncomeResponse {
	return IncomeResponse{
		Salary:      money(income.Salary),
		OtherIncome: money(income.OtherIncome),
		TotalIncome: money(income.Total()),
	}
}

type DebtResponse struct {
	Debt string `json:"debt"`
}

type StatsResponse struct {
	Daily   string `json:"daily"`
	Weekly  string `json:"weekly"`
	Monthly string `json:"monthly"`
	Balance string `json:"balance"`
	// SpendingPercentage is null when there is no income to compare against.
	SpendingPercentage *string `json:"spending_percentage"`
	OtherIncome        string  `json:"other_income"`
	TotalIncome        string  `json:"total_income"`
	ReferenceDate      string  `json:"reference_date"`
}

func toStatsResponse(s domain.StatsSummary) StatsResponse {
	response := StatsResponse{
		Daily:         money(s.Daily),
		Weekly:        money(s.Weekly),
		Monthly:       money(s.Monthly),
		Balance:       money(s.Balance),
		OtherIncome:   money(s.OtherIncome),
		TotalIncome:   money(s.TotalIncome),
		ReferenceDate: s.ReferenceDate.Format(domain.DateLayout),
	}
	if s.SpendingPercentage.Valid {
		pct := money(s.SpendingPercentage.Decimal)
		response.SpendingPercentage = &pct
	}
	return response
}
