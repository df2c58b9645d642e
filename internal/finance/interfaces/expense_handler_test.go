package interfaces

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestCreateExpense(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)

	status, response := server.do(t, http.MethodPost, "/expenses", `{"description":"Groceries","amount":"42.5","date":"2024-06-15"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", response["status"])

	data := dataOf(t, response)
	assert.Equal(t, "Groceries", data["description"])
	assert.Equal(t, "42.50", data["amount"])
	assert.Equal(t, "2024-06-15", data["date"])
	assert.NotEmpty(t, data["id"])
	require.Len(t, server.expenses.Expenses, 1)
	assert.Equal(t, "user-1", server.expenses.Expenses[0].UserID)
}

func TestCreateExpense_ValidationErrors(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `invalid body`, "Invalid request body"},
		{"non numeric amount", `{"description":"Taxi","amount":"ten","date":"2024-06-15"}`, "amount must be a number"},
		{"negative amount", `{"description":"Taxi","amount":-10,"date":"2024-06-15"}`, "amount must not be negative"},
		{"bad date", `{"description":"Taxi","amount":10,"date":"June 15"}`, "date must be a date in YYYY-MM-DD format"},
		{"missing description", `{"amount":10,"date":"2024-06-15"}`, "description is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := server.do(t, http.MethodPost, "/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "error", response["status"])
			assert.Equal(t, tt.message, response["message"])
			assert.Equal(t, float64(http.StatusBadRequest), response["code"])
		})
	}
	assert.Empty(t, server.expenses.Expenses)
}

func TestCreateExpense_Unauthorized(t *testing.T) {
	server := newTestServer(t, "", testNow)

	status, response := server.do(t, http.MethodPost, "/expenses", `{"description":"Taxi","amount":1,"date":"2024-06-15"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", response["message"])
}

func TestImportExpenses_RejectsWholeBatch(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)

	status, response := server.do(t, http.MethodPost, "/expenses/batch", `{"expenses":[
		{"description":"Lunch","amount":12,"date":"2024-06-14"},
		{"description":"Dinner","amount":"abc","date":"2024-06-14"}
	]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation error at expense 2: amount must be a number", response["message"])
	assert.Empty(t, server.expenses.Expenses)

	status, response = server.do(t, http.MethodPost, "/expenses/batch", `{"expenses":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body - no expenses provided", response["message"])

	status, response = server.do(t, http.MethodPost, "/expenses/batch", `{"expenses":[
		{"description":"Lunch","amount":12,"date":"2024-06-14"},
		{"description":"Dinner","amount":"30.10","date":"2024-06-14"}
	]}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Len(t, response["data"], 2)
	assert.Len(t, server.expenses.Expenses, 2)
}

func TestListExpenses(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)
	server.do(t, http.MethodPost, "/expenses", `{"description":"Old","amount":10,"date":"2024-06-01"}`)
	server.do(t, http.MethodPost, "/expenses", `{"description":"New","amount":"5.25","date":"2024-06-14"}`)

	status, response := server.do(t, http.MethodGet, "/expenses", "")
	assert.Equal(t, http.StatusOK, status)
	data := dataOf(t, response)
	assert.Equal(t, "15.25", data["total"])
	assert.Equal(t, float64(2), data["count"])
	expenses := data["expenses"].([]interface{})
	require.Len(t, expenses, 2)
	assert.Equal(t, "New", expenses[0].(map[string]interface{})["description"])

	status, response = server.do(t, http.MethodGet, "/expenses?date=2024-06-01", "")
	assert.Equal(t, http.StatusOK, status)
	data = dataOf(t, response)
	assert.Equal(t, "10.00", data["total"])
	assert.Equal(t, float64(1), data["count"])

	status, response = server.do(t, http.MethodGet, "/expenses?date=01-06-2024", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid date format, expected YYYY-MM-DD", response["message"])
}

func TestListExpenses_EmptyIsArray(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)

	status, response := server.do(t, http.MethodGet, "/expenses", "")
	assert.Equal(t, http.StatusOK, status)
	data := dataOf(t, response)
	assert.Equal(t, []interface{}{}, data["expenses"])
	assert.Equal(t, "0.00", data["total"])
}

func TestExpenseByID_Lifecycle(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)
	_, created := server.do(t, http.MethodPost, "/expenses", `{"description":"Taxi","amount":15,"date":"2024-06-10"}`)
	id := dataOf(t, created)["id"].(string)

	status, response := server.do(t, http.MethodGet, "/expenses/"+id, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Taxi", dataOf(t, response)["description"])

	status, response = server.do(t, http.MethodPut, "/expenses/"+id, `{"description":"Taxi home","amount":"18","date":"2024-06-11"}`)
	assert.Equal(t, http.StatusOK, status)
	data := dataOf(t, response)
	assert.Equal(t, "Taxi home", data["description"])
	assert.Equal(t, "18.00", data["amount"])
	assert.Equal(t, "2024-06-11", data["date"])

	status, _ = server.do(t, http.MethodDelete, "/expenses/"+id, "")
	assert.Equal(t, http.StatusOK, status)

	status, response = server.do(t, http.MethodGet, "/expenses/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Expense not found", response["message"])
}

func TestExpenseByID_InvalidAndForeignIDs(t *testing.T) {
	server := newTestServer(t, "user-1", testNow)

	status, response := server.do(t, http.MethodGet, "/expenses/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Expense not found", response["message"])

	status, _ = server.do(t, http.MethodDelete, "/expenses/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)

	_, created := server.do(t, http.MethodPost, "/expenses", `{"description":"Mine","amount":1,"date":"2024-06-10"}`)
	id := dataOf(t, created)["id"].(string)

	foreign := newTestServer(t, "user-2", testNow)
	foreign.expenses.Expenses = server.expenses.Expenses
	status, _ = foreign.do(t, http.MethodPut, "/expenses/"+id, `{"description":"Stolen","amount":1,"date":"2024-06-10"}`)
	assert.Equal(t, http.StatusNotFound, status)
}
