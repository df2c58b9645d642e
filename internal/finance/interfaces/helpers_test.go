package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/application"
	"github.com/bhuvi12a/expense-tracker/internal/finance/infrastructure"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	mux      *http.ServeMux
	expenses *infrastructure.MockExpenseRepository
	settings *infrastructure.MockSettingsRepository
}

func withUser(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != "" {
			r = r.WithContext(context.WithValue(r.Context(), "userID", userID))
		}
		next.ServeHTTP(w, r)
	})
}

// newTestServer routes the finance handlers the same way main does, with
// every request authenticated as userID.
func newTestServer(t *testing.T, userID string, now time.Time) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	expenses := &infrastructure.MockExpenseRepository{}
	settings := infrastructure.NewMockSettingsRepository()

	expenseHandler := NewExpenseHandler(application.NewExpenseService(expenses, logger), logger, RespondJSON, RespondError)
	incomeHandler := NewIncomeHandler(application.NewIncomeService(settings, logger), logger, RespondJSON, RespondError)
	statsService := application.NewStatsService(expenses, settings, time.UTC, logger).WithClock(func() time.Time { return now })
	statsHandler := NewStatsHandler(statsService, logger, RespondJSON, RespondError)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /expenses", expenseHandler.CreateExpense)
	mux.HandleFunc("POST /expenses/batch", expenseHandler.ImportExpenses)
	mux.HandleFunc("GET /expenses", expenseHandler.ListExpenses)
	mux.Handle("GET /expenses/{expenseID}", ValidatePathParamsMiddleware(logger, http.HandlerFunc(expenseHandler.GetExpense), "expenseID"))
	mux.Handle("PUT /expenses/{expenseID}", ValidatePathParamsMiddleware(logger, http.HandlerFunc(expenseHandler.UpdateExpense), "expenseID"))
	mux.Handle("DELETE /expenses/{expenseID}", ValidatePathParamsMiddleware(logger, http.HandlerFunc(expenseHandler.DeleteExpense), "expenseID"))
	mux.HandleFunc("GET /income", incomeHandler.GetIncome)
	mux.HandleFunc("PUT /income", incomeHandler.SetIncome)
	mux.HandleFunc("PUT /income/salary", incomeHandler.SetSalary)
	mux.HandleFunc("PUT /income/other", incomeHandler.SetOtherIncome)
	mux.HandleFunc("GET /debt", incomeHandler.GetDebt)
	mux.HandleFunc("PUT /debt", incomeHandler.SetDebt)
	mux.HandleFunc("GET /stats", statsHandler.GetStats)

	root := http.NewServeMux()
	root.Handle("/", withUser(userID, mux))
	return &testServer{mux: root, expenses: expenses, settings: settings}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.mux.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	return res.StatusCode, response
}

func dataOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", response)
	return data
}
