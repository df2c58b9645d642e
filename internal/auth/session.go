package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token is expired")
)

// defaultSessionTokenDuration is how long a login waits for its TOTP code.
const defaultSessionTokenDuration = 5 * time.Minute

type SessionManagerInterface interface {
	GenerateSessionToken(userID string, duration time.Duration) (string, error)
	VerifySessionToken(sessionToken string) (string, error)
	DeleteSessionToken(sessionToken string)
	PurgeExpired() int
}

type SessionToken struct {
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionManager holds pending two-factor logins in memory. Tokens do not
// survive a restart, the user simply logs in again.
type SessionManager struct {
	mu     sync.RWMutex
	tokens map[string]SessionToken
	now    func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		tokens: make(map[string]SessionToken),
		now:    time.Now,
	}
}

func (sm *SessionManager) GenerateSessionToken(userID string, duration time.Duration) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", ErrInternalError
	}

	token := hex.EncodeToString(tokenBytes)
	now := sm.now()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.tokens[token] = SessionToken{
		UserID:    userID,
		ExpiresAt: now.Add(duration),
		CreatedAt: now,
	}
	return token, nil
}

func (sm *SessionManager) VerifySessionToken(sessionToken string) (string, error) {
	sm.mu.RLock()
	token, exists := sm.tokens[sessionToken]
	sm.mu.RUnlock()

	if !exists {
		return "", ErrInvalidSessionToken
	}
	if sm.now().After(token.ExpiresAt) {
		return "", ErrExpiredSessionToken
	}
	return token.UserID, nil
}

func (sm *SessionManager) DeleteSessionToken(sessionToken string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.tokens, sessionToken)
}

// PurgeExpired drops expired tokens and reports how many were removed.
func (sm *SessionManager) PurgeExpired() int {
	now := sm.now()
	sm.mu.Lock()
	defer sm.mu.Unlock()

	purged := 0
	for token, session := range sm.tokens {
		if now.After(session.ExpiresAt) {
			delete(sm.tokens, token)
			purged++
		}
	}
	return purged
}
