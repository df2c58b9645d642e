package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/bhuvi12a/expense-tracker/internal/finance/application"
	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

type ExpenseServiceInterface interface {
	CreateExpense(ctx context.Context, userID string, input domain.ExpenseInput) (*domain.Expense, error)
	ImportExpenses(ctx context.Context, userID string, inputs []domain.ExpenseInput) ([]domain.Expense, error)
	ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) (*application.ExpenseList, error)
	GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, input domain.ExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

type ExpenseHandler struct {
	service      ExpenseServiceInterface
	logger       *logrus.Logger
	respondJSON  respondJSONFunc
	respondError respondErrorFunc
}

func NewExpenseHandler(
	service ExpenseServiceInterface,
	logger *logrus.Logger,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ExpenseHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil || respondError == nil {
		log.Fatal("Respond functions must not be nil")
		return nil
	}
	return &ExpenseHandler{
		service:      service,
		logger:       logger,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input domain.ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.service.CreateExpense(r.Context(), userID, input)
	if err != nil {
		h.handleError(w, err, "Failed to create expense")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Expense successfully created.",
		"data":    toExpenseResponse(*expense),
	})
}

func (h *ExpenseHandler) ImportExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Expenses []domain.ExpenseInput `json:"expenses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Expenses) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no expenses provided")
		return
	}

	expenses, err := h.service.ImportExpenses(r.Context(), userID, req.Expenses)
	if err != nil {
		h.handleError(w, err, "Failed to import expenses")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Expenses successfully created.",
		"data":    toExpenseResponses(expenses),
	})
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var filter domain.ExpenseFilter
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	list, err := h.service.ListExpenses(r.Context(), userID, filter)
	if err != nil {
		h.handleError(w, err, "Failed to retrieve expenses")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": ExpenseListResponse{
			Expenses: toExpenseResponses(list.Expenses),
			Total:    money(list.Total),
			Count:    len(list.Expenses),
		},
	})
}

func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	expense, err := h.service.GetExpense(r.Context(), userID, r.PathValue("expenseID"))
	if err != nil {
		h.handleError(w, err, "Failed to retrieve expense")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toExpenseResponse(*expense),
	})
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input domain.ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.service.UpdateExpense(r.Context(), userID, r.PathValue("expenseID"), input)
	if err != nil {
		h.handleError(w, err, "Failed to update expense")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Expense successfully updated.",
		"data":    toExpenseResponse(*expense),
	})
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), userID, r.PathValue("expenseID")); err != nil {
		h.handleError(w, err, "Failed to delete expense")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Expense successfully deleted.",
	})
}

func (h *ExpenseHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrExpenseNotFound):
		h.respondError(w, http.StatusNotFound, "Expense not found")
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error(fallback)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
