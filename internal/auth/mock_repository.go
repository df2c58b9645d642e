package auth

import (
	"context"
	"sync"
	"time"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu          sync.Mutex
	Secrets     map[string]string
	ResetTokens map[string]PasswordResetToken
	Err         error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Secrets:     make(map[string]string),
		ResetTokens: make(map[string]PasswordResetToken),
	}
}

func (m *MockRepository) SaveTwoFactorSecret(ctx context.Context, userID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Secrets[userID] = secret
	return nil
}

func (m *MockRepository) GetTwoFactorSecret(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	secret, ok := m.Secrets[userID]
	if !ok {
		return "", ErrTwoFactorSecretNotFound
	}
	return secret, nil
}

func (m *MockRepository) DeleteTwoFactorSecret(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Secrets, userID)
	return nil
}

func (m *MockRepository) SavePasswordResetToken(ctx context.Context, token PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.ResetTokens[token.UserID] = token
	return nil
}

func (m *MockRepository) ConsumePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	for userID, token := range m.ResetTokens {
		if token.TokenHash == tokenHash && token.ExpiresAt.After(now) {
			delete(m.ResetTokens, userID)
			return userID, nil
		}
	}
	return "", ErrInvalidResetToken
}

func (m *MockRepository) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var purged int64
	for userID, token := range m.ResetTokens {
		if !token.ExpiresAt.After(now) {
			delete(m.ResetTokens, userID)
			purged++
		}
	}
	return purged, nil
}
