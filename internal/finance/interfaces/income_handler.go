package interfaces

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type IncomeServiceInterface interface {
	GetIncome(ctx context.Context, userID string) (domain.IncomeConfig, error)
	SetIncome(ctx context.Context, userID string, income domain.IncomeConfig) error
	SetSalary(ctx context.Context, userID string, salary decimal.Decimal) error
	SetOtherIncome(ctx context.Context, userID string, otherIncome decimal.Decimal) error
	GetDebt(ctx context.Context, userID string) (decimal.Decimal, error)
	SetDebt(ctx context.Context, userID string, debt decimal.Decimal) error
}

type IncomeHandler struct {
	service      IncomeServiceInterface
	logger       *logrus.Logger
	respondJSON  respondJSONFunc
	respondError respondErrorFunc
}

func NewIncomeHandler(
	service IncomeServiceInterface,
	logger *logrus.Logger,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *IncomeHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &IncomeHandler{service: service, logger: logger, respondJSON: respondJSON, respondError: respondError}
}

func (h *IncomeHandler) GetIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	income, err := h.service.GetIncome(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to retrieve income")
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve income")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toIncomeResponse(income),
	})
}

func (h *IncomeHandler) SetIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Salary      *decimal.Decimal `json:"salary"`
		OtherIncome *decimal.Decimal `json:"other_income"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var missing []string
	if req.Salary == nil {
		missing = append(missing, "salary is required")
	}
	if req.OtherIncome == nil {
		missing = append(missing, "other_income is required")
	}
	if len(missing) > 0 {
		h.respondError(w, http.StatusBadRequest, "Validation errors occurred", missing)
		return
	}

	income := domain.IncomeConfig{Salary: *req.Salary, OtherIncome: *req.OtherIncome}
	if err := h.service.SetIncome(r.Context(), userID, income); err != nil {
		h.handleError(w, err, "Failed to update income")
		return
	}
	h.respondIncome(w, r, userID, "Income successfully updated.")
}

func (h *IncomeHandler) SetSalary(w http.ResponseWriter, r *http.Request) {
	h.setSingleValue(w, r, "salary", h.service.SetSalary)
}

func (h *IncomeHandler) SetOtherIncome(w http.ResponseWriter, r *http.Request) {
	h.setSingleValue(w, r, "other_income", h.service.SetOtherIncome)
}

func (h *IncomeHandler) setSingleValue(w http.ResponseWriter, r *http.Request, field string, set func(ctx context.Context, userID string, value decimal.Decimal) error) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	value, ok := h.decodeValue(w, r, field)
	if !ok {
		return
	}

	if err := set(r.Context(), userID, value); err != nil {
		h.handleError(w, err, "Failed to update income")
		return
	}
	h.respondIncome(w, r, userID, "Income successfully updated.")
}

func (h *IncomeHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	debt, err := h.service.GetDebt(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to retrieve debt")
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve debt")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   DebtResponse{Debt: money(debt)},
	})
}

func (h *IncomeHandler) SetDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	debt, ok := h.decodeValue(w, r, "debt")
	if !ok {
		return
	}

	if err := h.service.SetDebt(r.Context(), userID, debt); err != nil {
		h.handleError(w, err, "Failed to update debt")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Debt successfully updated.",
		"data":    DebtResponse{Debt: money(debt.Round(2))},
	})
}

// decodeValue reads a body of the form {"<field>": <decimal>}.
func (h *IncomeHandler) decodeValue(w http.ResponseWriter, r *http.Request, field string) (decimal.Decimal, bool) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return decimal.Zero, false
	}
	raw, exists := body[field]
	if !exists || string(raw) == "null" {
		h.respondError(w, http.StatusBadRequest, field+" is required")
		return decimal.Zero, false
	}
	var value decimal.Decimal
	if err := json.Unmarshal(raw, &value); err != nil {
		h.respondError(w, http.StatusBadRequest, field+" must be a number")
		return decimal.Zero, false
	}
	return value, true
}

func (h *IncomeHandler) respondIncome(w http.ResponseWriter, r *http.Request, userID, message string) {
	income, err := h.service.GetIncome(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to retrieve income")
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve income")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    toIncomeResponse(income),
	})
}

func (h *IncomeHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if financeErrors.IsValidationError(err) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.WithError(err).Error(fallback)
	h.respondError(w, http.StatusInternalServerError, fallback)
}
