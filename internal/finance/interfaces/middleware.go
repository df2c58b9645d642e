package interfaces

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var notFoundMessages = map[string]string{
	"expenseID": "Expense not found",
}

// ValidatePathParamsMiddleware rejects requests whose path params are not UUIDs
// before they reach a handler. A malformed id cannot exist, so it is a 404.
func ValidatePathParamsMiddleware(logger *logrus.Logger, next http.Handler, params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, param := range params {
			paramValue := r.PathValue(param)
			if paramValue == "" {
				RespondError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", param))
				return
			}

			if _, err := uuid.Parse(paramValue); err != nil {
				logger.WithFields(logrus.Fields{
					"param": param,
					"value": paramValue,
				}).Debug("Invalid path parameter")
				if message, ok := notFoundMessages[param]; ok {
					RespondError(w, http.StatusNotFound, message)
					return
				}
				RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
