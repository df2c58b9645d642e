package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshTokenPath   = "/api/refresh/token"
	adminKeyHeader     = "Admin-Key"
)

func (s *service) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				respondError(w, http.StatusUnauthorized, "Invalid token format")
				return
			}

			userID, err := s.jwtManager.ValidateAccessToken(tokenString)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if _, err := s.userService.GetUserByID(r.Context(), userID); err != nil {
				if errors.Is(err, ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
					return
				}
				s.logger.WithError(err).Error("Error loading user in access middleware")
				respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JWTRefreshTokenMiddleware reads the refresh token from its http-only
// cookie and checks it is still bound to the user's hash token.
func (s *service) JWTRefreshTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(refreshTokenCookie)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Refresh token is required")
				return
			}
			tokenString := cookie.Value

			userID, err := s.jwtManager.ExtractUserIDFromRefreshToken(tokenString)
			if err != nil {
				if errors.Is(err, ErrExpiredJWTToken) {
					respondError(w, http.StatusUnauthorized, ErrExpiredJWTToken.Error())
					return
				}
				respondError(w, http.StatusUnauthorized, ErrInvalidJWTRefreshToken.Error())
				return
			}

			existingUser, err := s.userService.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
					return
				}
				s.logger.WithError(err).Error("Error loading user in refresh middleware")
				respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
				return
			}
			if err := s.jwtManager.ValidateRefreshToken(tokenString, existingUser.HashToken); err != nil {
				respondError(w, http.StatusUnauthorized, ErrInvalidJWTRefreshToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKeyMiddleware compares the Admin-Key header in constant time. With no
// admin key configured every request is rejected.
func (s *service) AdminKeyMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(adminKeyHeader)
			if s.cfg.AdminKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.AdminKey)) != 1 {
				s.logger.WithField("remote_addr", r.RemoteAddr).Warn("Rejected admin request")
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
