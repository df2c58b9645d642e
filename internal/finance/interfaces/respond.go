package interfaces

import (
	"encoding/json"
	"net/http"
)

// RespondJSON and RespondError are the response writers shared by every
// finance handler.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func RespondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	RespondJSON(w, status, payload)
}

type respondJSONFunc func(w http.ResponseWriter, status int, payload interface{})
type respondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)

func userIDFromRequest(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	return userID, ok && userID != ""
}
