package emailService

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

const (
	subjectResetPassword        = "Reset your password"
	templateResetPassword       = "reset_password.html"
	subjectForcedPasswordReset  = "Password reset required"
	templateForcedPasswordReset = "forced_password_reset.html"
	subjectWelcome              = "Welcome to Expense Tracker"
	templateWelcome             = "welcome.html"
	defaultQueueSize            = 100
)

//go:embed templates/*.html
var templatesFS embed.FS

type EmailData interface {
	TemplateFileName() string
	Subject() string
}

type EmailSender interface {
	QueueEmail(to string, data EmailData)
}

type ResetPasswordData struct {
	UserName  string
	ResetLink string
	ExpiresIn string
}

func (r ResetPasswordData) TemplateFileName() string {
	return templateResetPassword
}

func (r ResetPasswordData) Subject() string {
	return subjectResetPassword
}

type ForcedPasswordResetData struct {
	UserName  string
	ResetLink string
	ExpiresIn string
}

func (r ForcedPasswordResetData) TemplateFileName() string {
	return templateForcedPasswordReset
}

func (r ForcedPasswordResetData) Subject() string {
	return subjectForcedPasswordReset
}

type WelcomeData struct {
	UserName string
	AppURL   string
}

func (r WelcomeData) TemplateFileName() string {
	return templateWelcome
}

func (r WelcomeData) Subject() string {
	return subjectWelcome
}

// Config holds SMTP settings. With an empty Host emails are only logged.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type EmailService struct {
	cfg       Config
	logger    *logrus.Logger
	templates *template.Template
	taskQueue chan EmailTask
	send      func(e *email.Email) error

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

type EmailTask struct {
	to      string
	data    EmailData
	subject string
}

func NewEmailService(cfg Config, logger *logrus.Logger) (*EmailService, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing email templates: %w", err)
	}

	s := &EmailService{
		cfg:       cfg,
		logger:    logger,
		templates: templates,
		taskQueue: make(chan EmailTask, defaultQueueSize),
		done:      make(chan struct{}),
	}
	s.send = s.sendSMTP
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST is not set, emails will be logged instead of sent")
		s.send = s.logOnly
	}

	go s.worker()
	return s, nil
}

func (s *EmailService) worker() {
	defer close(s.done)
	for task := range s.taskQueue {
		if err := s.sendTemplatedEmail(task.to, task.data, task.subject); err != nil {
			s.logger.WithError(err).WithField("to", task.to).Error("Error sending email")
		}
	}
}

// QueueEmail schedules an email without blocking. It is dropped with a warning
// when the queue is full or the service is closed.
func (s *EmailService) QueueEmail(to string, data EmailData) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.WithField("to", to).Warn("Email service closed, dropping email")
		return
	}
	select {
	case s.taskQueue <- EmailTask{to: to, data: data, subject: data.Subject()}:
	default:
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": data.Subject(),
		}).Warn("Email queue is full, dropping email")
	}
}

// Close stops accepting emails and waits until the queue is drained.
func (s *EmailService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.taskQueue)
	s.mu.Unlock()

	<-s.done
	s.logger.Info("Email queue drained")
}

func (s *EmailService) render(data EmailData) ([]byte, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, data.TemplateFileName(), data); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}
	return body.Bytes(), nil
}

func (s *EmailService) sendTemplatedEmail(to string, data EmailData, subject string) error {
	body, err := s.render(data)
	if err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.HTML = body
	return s.send(e)
}

func (s *EmailService) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"to":      e.To,
		"subject": e.Subject,
	}).Info("Email sent")
	return nil
}

func (s *EmailService) logOnly(e *email.Email) error {
	s.logger.WithFields(logrus.Fields{
		"to":      e.To,
		"subject": e.Subject,
	}).Info("Email not sent, SMTP is not configured")
	return nil
}
