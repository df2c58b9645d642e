package interfaces

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/finance/domain"
	financeErrors "github.com/bhuvi12a/expense-tracker/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

type StatsServiceInterface interface {
	GetStats(ctx context.Context, userID string, asOf *time.Time) (domain.StatsSummary, error)
}

type StatsHandler struct {
	service      StatsServiceInterface
	logger       *logrus.Logger
	respondJSON  respondJSONFunc
	respondError respondErrorFunc
}

func NewStatsHandler(
	service StatsServiceInterface,
	logger *logrus.Logger,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *StatsHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &StatsHandler{service: service, logger: logger, respondJSON: respondJSON, respondError: respondError}
}

// GetStats returns the spending summary, optionally as of the date in ?as_of=YYYY-MM-DD.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var asOf *time.Time
	if asOfStr := r.URL.Query().Get("as_of"); asOfStr != "" {
		date, err := domain.ParseDate(asOfStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid as_of format, expected YYYY-MM-DD")
			return
		}
		asOf = &date
	}

	summary, err := h.service.GetStats(r.Context(), userID, asOf)
	if err != nil {
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to compute stats")
		h.respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toStatsResponse(summary),
	})
}
