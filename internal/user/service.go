package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	emailService "github.com/bhuvi12a/expense-tracker/internal/email"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength    = 254
	minEmailLength    = 3
	maxUsernameLength = 30
	minUsernameLength = 5
	minPasswordLength = 8
	bcryptCost        = 12
)

var (
	ErrInvalidEmail             = errors.New("email address is not valid")
	ErrEmailLength              = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrUsernameLength           = fmt.Errorf("username must be between %d and %d characters long", minUsernameLength, maxUsernameLength)
	ErrPasswordTooShort         = fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrUsernameAlreadyExists    = errors.New("username already exists")
	ErrInvalidOldPassword       = errors.New("invalid old password")
	ErrPasswordChangeIncomplete = errors.New("current_password and new_password are both required to change the password")
	ErrInternalError            = errors.New("internal Server Error")
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	HashToken        string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Service interface {
	Register(ctx context.Context, username, email, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, userID, username, currentPassword, newPassword string) (*User, error)
	ChangePasswordWithOldPassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, userID, newPassword string) error
	SetTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error
}

type service struct {
	repo           Repository
	emailService   emailService.EmailSender
	logger         *logrus.Logger
	appURL         string
	checkEmailHost bool
}

// NewUserService wires the user service. With checkEmailHost set the domain
// of a registering email must resolve.
func NewUserService(repo Repository, emailSender emailService.EmailSender, logger *logrus.Logger, appURL string, checkEmailHost bool) Service {
	return &service{
		repo:           repo,
		emailService:   emailSender,
		logger:         logger,
		appURL:         appURL,
		checkEmailHost: checkEmailHost,
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("could not generate hash token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword reports ErrPasswordTooShort for passwords under the minimum length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func validateUsername(username string) error {
	if n := len([]rune(username)); n < minUsernameLength || n > maxUsernameLength {
		return ErrUsernameLength
	}
	return nil
}

func (s *service) validateEmailAddress(email string) error {
	if len(email) > maxEmailLength || len(email) < minEmailLength {
		return ErrEmailLength
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	if !s.checkEmailHost {
		return nil
	}

	// Only an unresolvable domain is fatal, SMTP dial failures are common
	// behind firewalls.
	if err := checkmail.ValidateHost(email); err != nil {
		if errors.Is(err, checkmail.ErrUnresolvableHost) {
			return ErrInvalidEmail
		}
		s.logger.WithError(err).WithField("email", email).Warn("Email host check failed, continuing")
	}
	return nil
}

// usernameFromEmail derives a username from the local part of the address.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if runes := []rune(local); len(runes) > maxUsernameLength {
		local = string(runes[:maxUsernameLength])
	}
	return local
}

func (s *service) Register(ctx context.Context, username, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := s.validateEmailAddress(email); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = usernameFromEmail(email)
	} else if err := validateUsername(username); err != nil {
		return nil, err
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	existingUser, err := s.repo.findByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.logger.WithError(err).Error("Error checking existing user")
		return nil, ErrInternalError
	}
	if existingUser != nil {
		if existingUser.Email == email {
			return nil, ErrEmailAlreadyExists
		}
		return nil, ErrUsernameAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.WithError(err).Error("Error hashing password")
		return nil, ErrInternalError
	}

	hashToken, err := generateHashToken()
	if err != nil {
		s.logger.WithError(err).Error("Error generating hash token")
		return nil, ErrInternalError
	}

	user := &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}
	if err := s.repo.createUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrUsernameAlreadyExists) {
			return nil, err
		}
		s.logger.WithError(err).Error("Error creating user")
		return nil, ErrInternalError
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	s.emailService.QueueEmail(user.Email, emailService.WelcomeData{
		UserName: user.Username,
		AppURL:   s.appURL,
	})

	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID, username, currentPassword, newPassword string) (*User, error) {
	existingUser, err := s.repo.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	changeUsername := username != "" && username != existingUser.Username
	if changeUsername {
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		taken, err := s.repo.getUserByUsername(ctx, username)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		if taken != nil && taken.ID != userID {
			return nil, ErrUsernameAlreadyExists
		}
	}

	changePassword := currentPassword != "" || newPassword != ""
	if changePassword {
		if currentPassword == "" || newPassword == "" {
			return nil, ErrPasswordChangeIncomplete
		}
		if !doPasswordsMatch(existingUser.PasswordHash, currentPassword) {
			return nil, ErrInvalidOldPassword
		}
		if err := ValidatePassword(newPassword); err != nil {
			return nil, err
		}
	}

	if changeUsername {
		if err := s.repo.updateUsername(ctx, userID, username); err != nil {
			return nil, err
		}
	}
	if changePassword {
		if err := s.changePassword(ctx, userID, newPassword); err != nil {
			return nil, err
		}
	}

	return s.repo.getUserByID(ctx, userID)
}

func (s *service) ChangePasswordWithOldPassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	existingUser, err := s.repo.getUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !doPasswordsMatch(existingUser.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	return s.changePassword(ctx, userID, newPassword)
}

// ResetPassword replaces the password without the old one, callers must
// have verified a reset token.
func (s *service) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	return s.changePassword(ctx, userID, newPassword)
}

// changePassword also rotates the hash token so that refresh tokens issued
// before the change stop validating.
func (s *service) changePassword(ctx context.Context, userID, newPassword string) error {
	newPasswordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}

	newHashToken, err := generateHashToken()
	if err != nil {
		return err
	}

	if err := s.repo.updateUserPasswordAndHashToken(ctx, userID, newPasswordHash, newHashToken); err != nil {
		return fmt.Errorf("could not update user password: %w", err)
	}
	s.logger.WithField("user_id", userID).Info("Password changed")
	return nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.getUserByID(ctx, userID)
}

func (s *service) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	loginOrEmail = strings.TrimSpace(loginOrEmail)
	if strings.Contains(loginOrEmail, "@") {
		loginOrEmail = normalizeEmail(loginOrEmail)
	}
	return s.repo.getUserByLoginOrEmail(ctx, loginOrEmail)
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.getUserByEmail(ctx, normalizeEmail(email))
}

func (s *service) SetTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error {
	return s.repo.updateTwoFactorEnabled(ctx, userID, enabled)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.listUsers(ctx)
}
