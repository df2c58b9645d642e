package emailService

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmails struct {
	mu     sync.Mutex
	emails []*email.Email
}

func (s *sentEmails) send(e *email.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, e)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEmailService(t *testing.T) (*EmailService, *sentEmails) {
	t.Helper()
	s, err := NewEmailService(Config{From: "noreply@example.com"}, quietLogger())
	require.NoError(t, err)
	sent := &sentEmails{}
	s.send = sent.send
	return s, sent
}

func TestRenderTemplates(t *testing.T) {
	s, _ := newTestEmailService(t)
	defer s.Close()

	tests := []struct {
		name     string
		data     EmailData
		subject  string
		contains []string
	}{
		{
			name:     "reset password",
			data:     ResetPasswordData{UserName: "alice", ResetLink: "http://localhost:3000/reset-password?token=abc", ExpiresIn: "15 minutes"},
			subject:  "Reset your password",
			contains: []string{"alice", "http://localhost:3000/reset-password?token=abc", "15 minutes"},
		},
		{
			name:     "forced reset",
			data:     ForcedPasswordResetData{UserName: "bob", ResetLink: "http://localhost:3000/reset-password?token=xyz", ExpiresIn: "1 hour"},
			subject:  "Password reset required",
			contains: []string{"bob", "token=xyz", "1 hour"},
		},
		{
			name:     "welcome",
			data:     WelcomeData{UserName: "carol", AppURL: "http://localhost:3000"},
			subject:  "Welcome to Expense Tracker",
			contains: []string{"carol", "http://localhost:3000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := s.render(tt.data)
			require.NoError(t, err)
			for _, fragment := range tt.contains {
				assert.Contains(t, string(body), fragment)
			}
			assert.Equal(t, tt.subject, tt.data.Subject())
		})
	}
}

func TestQueueEmail_CloseDrainsQueue(t *testing.T) {
	s, sent := newTestEmailService(t)

	s.QueueEmail("alice@example.com", WelcomeData{UserName: "alice", AppURL: "http://localhost:3000"})
	s.QueueEmail("bob@example.com", ResetPasswordData{UserName: "bob", ResetLink: "http://x/reset", ExpiresIn: "15 minutes"})
	s.Close()

	sent.mu.Lock()
	defer sent.mu.Unlock()
	require.Len(t, sent.emails, 2)
	assert.Equal(t, []string{"alice@example.com"}, sent.emails[0].To)
	assert.Equal(t, "Welcome to Expense Tracker", sent.emails[0].Subject)
	assert.Equal(t, "noreply@example.com", sent.emails[0].From)
	assert.Equal(t, "Reset your password", sent.emails[1].Subject)
	assert.Contains(t, string(sent.emails[1].HTML), "http://x/reset")
}

func TestQueueEmail_AfterCloseIsDropped(t *testing.T) {
	s, sent := newTestEmailService(t)
	s.Close()
	s.Close()

	s.QueueEmail("late@example.com", WelcomeData{UserName: "late"})

	sent.mu.Lock()
	defer sent.mu.Unlock()
	assert.Empty(t, sent.emails)
}

func TestNewEmailService_LogOnlyWithoutHost(t *testing.T) {
	s, err := NewEmailService(Config{}, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	e := email.NewEmail()
	e.To = []string{"alice@example.com"}
	assert.NoError(t, s.send(e))
}

func TestLogOnly_DoesNotLogBody(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s, err := NewEmailService(Config{}, logger)
	require.NoError(t, err)

	s.QueueEmail("alice@example.com", ResetPasswordData{UserName: "alice", ResetLink: "http://localhost:3000/reset-password?token=secret-token", ExpiresIn: "15 minutes"})
	s.Close()

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Email not sent, SMTP is not configured" {
			logged = true
			assert.Equal(t, logrus.InfoLevel, entry.Level)
			assert.Equal(t, "Reset your password", entry.Data["subject"])
			assert.Equal(t, []string{"alice@example.com"}, entry.Data["to"])
		}
		assert.NotContains(t, entry.Message, "secret-token")
		for _, value := range entry.Data {
			assert.NotContains(t, fmt.Sprint(value), "secret-token")
		}
	}
	assert.True(t, logged)
}

func TestQueueEmail_FullQueueDoesNotBlock(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := &EmailService{
		logger:    logger,
		taskQueue: make(chan EmailTask, 1),
		done:      make(chan struct{}),
	}

	returned := make(chan struct{})
	go func() {
		s.QueueEmail("alice@example.com", WelcomeData{UserName: "alice"})
		s.QueueEmail("bob@example.com", WelcomeData{UserName: "bob"})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("QueueEmail blocked on a full queue")
	}

	assert.Len(t, s.taskQueue, 1)
	task := <-s.taskQueue
	assert.Equal(t, "alice@example.com", task.to)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "Email queue is full, dropping email", last.Message)
	assert.Equal(t, "bob@example.com", last.Data["to"])
}
