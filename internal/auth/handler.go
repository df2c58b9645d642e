package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/user"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authService  Service
	logger       *logrus.Logger
	secureCookie bool
}

// NewHandler builds the auth handlers. secureCookie marks the refresh cookie
// Secure and should be set whenever the API is served over HTTPS.
func NewHandler(authService Service, logger *logrus.Logger, secureCookie bool) *Handler {
	return &Handler{
		authService:  authService,
		logger:       logger,
		secureCookie: secureCookie,
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

func (h *Handler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     refreshTokenPath,
		MaxAge:   int(defaultJWTRefreshDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     refreshTokenPath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func userIDFromRequest(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	return userID, ok && userID != ""
}

// twoFactorStatus maps two-factor errors to a status and client message.
func twoFactorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalid2FACode):
		return http.StatusUnauthorized, "Invalid 2fa code"
	case errors.Is(err, ErrInvalidSessionToken), errors.Is(err, ErrExpiredSessionToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrUser2FAAlreadyEnabled):
		return http.StatusConflict, "Two-factor authentication is already enabled"
	case errors.Is(err, ErrUser2FANotEnabled):
		return http.StatusBadRequest, "Two-factor authentication is not enabled"
	case errors.Is(err, ErrTwoFactorNotRegistered):
		return http.StatusBadRequest, "Two-factor authentication has not been registered"
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrLogin string `json:"email_or_login"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" || req.EmailOrLogin == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existingUser, sessionTokenOrJWT, refreshToken, err := h.authService.Login(r.Context(), req.EmailOrLogin, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.WithError(err).Error("Login failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if refreshToken == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "Two-factor authentication required",
			"data": map[string]string{
				"user_id":       existingUser.ID,
				"session_token": sessionTokenOrJWT,
			},
		})
		return
	}

	h.setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id":      existingUser.ID,
			"access_token": sessionTokenOrJWT,
		},
	})
}

func (h *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string `json:"session_token"`
		Code         string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionToken == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existingUser, accessToken, refreshToken, err := h.authService.VerifyTwoFactor(r.Context(), req.SessionToken, req.Code)
	if err != nil {
		status, message := twoFactorStatus(err)
		respondError(w, status, message)
		return
	}

	h.setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id":      existingUser.ID,
			"access_token": accessToken,
		},
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logout successful",
	})
}

func (h *Handler) HandleRegisterTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otpURI, err := h.authService.RegisterTwoFactor(r.Context(), userID)
	if err != nil {
		status, message := twoFactorStatus(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Two-factor authentication initiated. Please verify to enable.",
		"data": map[string]string{
			"otp_uri": otpURI,
		},
	})
}

func (h *Handler) HandleVerifyTwoFactorRegistration(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.VerifyTwoFactorRegistration(r.Context(), userID, req.Code); err != nil {
		status, message := twoFactorStatus(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Two-factor authentication enabled",
	})
}

func (h *Handler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.DisableTwoFactor(r.Context(), userID, req.Code); err != nil {
		status, message := twoFactorStatus(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Two-factor authentication disabled successfully",
	})
}

func (h *Handler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
		return
	}

	accessToken, newRefreshToken, err := h.authService.RefreshAccessToken(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
		return
	}

	h.setRefreshCookie(w, newRefreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}

func (h *Handler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Password reset email sent",
	})
}

func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrInvalidResetToken):
			respondError(w, http.StatusBadRequest, "Invalid or expired reset token")
		case errors.Is(err, user.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Password reset successful",
	})
}

func (h *Handler) HandleResetAllPasswords(w http.ResponseWriter, r *http.Request) {
	count, err := h.authService.ResetAllPasswords(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Mass password reset failed")
		respondError(w, http.StatusInternalServerError, "Failed to process mass password reset")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Reset emails sent to %d users", count),
		"data": map[string]int{
			"users": count,
		},
	})
}
