package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	emailService "github.com/bhuvi12a/expense-tracker/internal/email"
	"github.com/bhuvi12a/expense-tracker/internal/user"
	"github.com/sirupsen/logrus"
)

const (
	resetTokenDuration       = 15 * time.Minute
	forcedResetTokenDuration = time.Hour
)

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

func generateResetToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("could not generate reset token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

// hashResetToken is what gets stored, the plain token only travels by email.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *service) resetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.AppURL, "/"), token)
}

// issueResetToken stores a fresh token for u, replacing any earlier one, and
// returns the link to email.
func (s *service) issueResetToken(ctx context.Context, u user.User, ttl time.Duration) (string, error) {
	token, err := generateResetToken()
	if err != nil {
		return "", err
	}
	err = s.repo.SavePasswordResetToken(ctx, PasswordResetToken{
		UserID:    u.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return s.resetLink(token), nil
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	existingUser, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		s.logger.WithError(err).Error("Error loading user for password reset")
		return ErrInternalError
	}

	link, err := s.issueResetToken(ctx, *existingUser, resetTokenDuration)
	if err != nil {
		s.logger.WithError(err).Error("Error issuing password reset token")
		return ErrInternalError
	}

	s.emailService.QueueEmail(existingUser.Email, emailService.ResetPasswordData{
		UserName:  existingUser.Username,
		ResetLink: link,
		ExpiresIn: "15 minutes",
	})
	s.logger.WithField("user_id", existingUser.ID).Info("Password reset requested")
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := user.ValidatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.repo.ConsumePasswordResetToken(ctx, hashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		s.logger.WithError(err).Error("Error consuming password reset token")
		return ErrInternalError
	}

	if err := s.userService.ResetPassword(ctx, userID, newPassword); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("Error resetting password")
		return ErrInternalError
	}

	s.logger.WithField("user_id", userID).Info("Password reset")
	return nil
}

// ResetAllPasswords sends every user a one hour reset link and returns how
// many users were notified.
func (s *service) ResetAllPasswords(ctx context.Context) (int, error) {
	users, err := s.userService.ListUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error listing users for forced reset")
		return 0, ErrInternalError
	}

	for _, u := range users {
		link, err := s.issueResetToken(ctx, u, forcedResetTokenDuration)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", u.ID).Error("Error issuing forced reset token")
			return 0, ErrInternalError
		}
		s.emailService.QueueEmail(u.Email, emailService.ForcedPasswordResetData{
			UserName:  u.Username,
			ResetLink: link,
			ExpiresIn: "1 hour",
		})
	}

	s.logger.WithField("users", len(users)).Info("Forced password reset issued")
	return len(users), nil
}

func (s *service) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	purged, err := s.repo.DeleteExpiredPasswordResetTokens(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.WithFields(logrus.Fields{"purged": purged}).Info("Expired password reset tokens purged")
	}
	return purged, nil
}
