package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository keeps users in memory, for tests of this and dependent
// packages.
type MockRepository struct {
	mu    sync.Mutex
	users map[string]User
	Err   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[string]User)}
}

func (m *MockRepository) find(match func(u User) bool) (*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) createUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return ErrUsernameAlreadyExists
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *MockRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u User) bool { return u.ID == id })
}

func (m *MockRepository) getUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u User) bool { return u.Email == email })
}

func (m *MockRepository) getUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u User) bool { return u.Username == username })
}

func (m *MockRepository) getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u User) bool { return u.Username == loginOrEmail || u.Email == loginOrEmail })
}

func (m *MockRepository) findByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u User) bool { return u.Username == username || u.Email == email })
}

func (m *MockRepository) listUsers(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *MockRepository) update(userID string, apply func(u *User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	apply(&u)
	u.UpdatedAt = time.Now()
	m.users[userID] = u
	return nil
}

func (m *MockRepository) updateUsername(ctx context.Context, userID, username string) error {
	return m.update(userID, func(u *User) { u.Username = username })
}

func (m *MockRepository) updateTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error {
	return m.update(userID, func(u *User) { u.TwoFactorEnabled = enabled })
}

func (m *MockRepository) updateUserPasswordAndHashToken(ctx context.Context, userID, newPasswordHash, newHashToken string) error {
	return m.update(userID, func(u *User) {
		u.PasswordHash = newPasswordHash
		u.HashToken = newHashToken
	})
}
