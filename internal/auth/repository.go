package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrTwoFactorSecretNotFound = errors.New("two-factor secret not found")

type PasswordResetToken struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

type Repository interface {
	SaveTwoFactorSecret(ctx context.Context, userID, secret string) error
	GetTwoFactorSecret(ctx context.Context, userID string) (string, error)
	DeleteTwoFactorSecret(ctx context.Context, userID string) error

	SavePasswordResetToken(ctx context.Context, token PasswordResetToken) error
	ConsumePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
	DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type authRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) Repository {
	return &authRepository{
		db: db,
	}
}

func (r *authRepository) SaveTwoFactorSecret(ctx context.Context, userID, secret string) error {
	query := `
        INSERT INTO user_two_factor_secrets (user_id, encrypted_secret, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET encrypted_secret = EXCLUDED.encrypted_secret,
            created_at = NOW()
    `
	if _, err := r.db.ExecContext(ctx, query, userID, secret); err != nil {
		return fmt.Errorf("could not save two-factor secret: %w", err)
	}
	return nil
}

func (r *authRepository) GetTwoFactorSecret(ctx context.Context, userID string) (string, error) {
	var secret string
	err := r.db.QueryRowContext(ctx, `SELECT encrypted_secret FROM user_two_factor_secrets WHERE user_id = $1`, userID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTwoFactorSecretNotFound
		}
		return "", fmt.Errorf("could not get two-factor secret: %w", err)
	}
	return secret, nil
}

func (r *authRepository) DeleteTwoFactorSecret(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_two_factor_secrets WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("could not delete two-factor secret: %w", err)
	}
	return nil
}

// SavePasswordResetToken replaces any earlier token of the same user.
func (r *authRepository) SavePasswordResetToken(ctx context.Context, token PasswordResetToken) error {
	query := `
        INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET token_hash = EXCLUDED.token_hash,
            expires_at = EXCLUDED.expires_at,
            created_at = NOW()
    `
	if _, err := r.db.ExecContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt); err != nil {
		return fmt.Errorf("could not save password reset token: %w", err)
	}
	return nil
}

// ConsumePasswordResetToken deletes a live token and returns its user id, so a
// token can be redeemed only once.
func (r *authRepository) ConsumePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM password_reset_tokens WHERE token_hash = $1 AND expires_at > $2 RETURNING user_id`, tokenHash, now).
		Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidResetToken
		}
		return "", fmt.Errorf("could not consume password reset token: %w", err)
	}
	return userID, nil
}

func (r *authRepository) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("could not purge password reset tokens: %w", err)
	}
	return result.RowsAffected()
}
