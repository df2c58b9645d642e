package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	userService Service
	logger      *logrus.Logger
}

func NewHandler(userService Service, logger *logrus.Logger) *Handler {
	return &Handler{
		userService: userService,
		logger:      logger,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type profileResponse struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	TwoFactorEnabled bool   `json:"2fa_enabled"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func toProfileResponse(u *User) profileResponse {
	return profileResponse{
		UserID:           u.ID,
		Email:            u.Email,
		Username:         u.Username,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// statusFor maps user errors that are safe to show to the client.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists), errors.Is(err, ErrUsernameAlreadyExists):
		return http.StatusConflict, true
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrEmailLength),
		errors.Is(err, ErrUsernameLength), errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordChangeIncomplete):
		return http.StatusBadRequest, true
	case errors.Is(err, ErrInvalidOldPassword):
		return http.StatusUnauthorized, true
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, true
	}
	return http.StatusInternalServerError, false
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if status, ok := statusFor(err); ok {
			respondError(w, status, err.Error())
			return
		}
		h.logger.WithError(err).Error("Could not register user")
		respondError(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id":  user.ID,
			"username": user.Username,
		},
	})
}

func (h *Handler) HandleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.WithError(err).Error("Could not fetch user data")
		respondError(w, http.StatusInternalServerError, "Could not fetch user data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toProfileResponse(user),
	})
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Username        string `json:"username"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if status, ok := statusFor(err); ok {
			respondError(w, status, err.Error())
			return
		}
		h.logger.WithError(err).Error("Could not update profile")
		respondError(w, http.StatusInternalServerError, "Could not update profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Profile updated successfully",
		"data":    toProfileResponse(user),
	})
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := h.userService.ChangePasswordWithOldPassword(r.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrInvalidOldPassword):
			respondError(w, http.StatusUnauthorized, "Invalid old password")
		case errors.Is(err, ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.WithError(err).Error("Could not change password")
			respondError(w, http.StatusInternalServerError, "Could not change password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Password changed successfully",
	})
}
