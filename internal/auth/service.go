package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	emailService "github.com/bhuvi12a/expense-tracker/internal/email"
	"github.com/bhuvi12a/expense-tracker/internal/user"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound           = user.ErrUserNotFound
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInternalError          = errors.New("internal Server Error")
	ErrUser2FANotEnabled      = errors.New("two factor auth is not enabled")
	ErrUser2FAAlreadyEnabled  = errors.New("2fa auth already enabled")
	ErrTwoFactorNotRegistered = errors.New("two factor auth has not been registered")
	ErrInvalid2FACode         = errors.New("2fa code is invalid")
)

type Service interface {
	Login(ctx context.Context, emailOrLogin, password string) (*user.User, string, string, error)
	VerifyTwoFactor(ctx context.Context, sessionToken, code string) (*user.User, string, string, error)
	RegisterTwoFactor(ctx context.Context, userID string) (string, error)
	VerifyTwoFactorRegistration(ctx context.Context, userID, code string) error
	DisableTwoFactor(ctx context.Context, userID, code string) error
	RefreshAccessToken(ctx context.Context, userID string) (string, string, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ResetAllPasswords(ctx context.Context) (int, error)

	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
	PurgeExpiredSessions() int

	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
	AdminKeyMiddleware() func(http.Handler) http.Handler
}

// Config carries the settings auth needs from the environment.
type Config struct {
	// AppURL prefixes the reset links sent by email.
	AppURL string
	// AdminKey guards the admin routes, an empty key disables them.
	AdminKey string
}

type service struct {
	repo           Repository
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	emailService   emailService.EmailSender
	authenticator  TwoFactorAuthenticator
	cfg            Config
	logger         *logrus.Logger
	now            func() time.Time
}

func NewAuthService(
	repo Repository,
	userService user.Service,
	sessionManager SessionManagerInterface,
	jwtManager JWTManagerInterface,
	emailSender emailService.EmailSender,
	authenticator TwoFactorAuthenticator,
	cfg Config,
	logger *logrus.Logger,
) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		emailService:   emailSender,
		authenticator:  authenticator,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func (s *service) issueTokens(u *user.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateAccessJWT(u.ID, defaultJWTDuration)
	if err != nil {
		s.logger.WithError(err).Error("Error generating access token")
		return "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(u.ID, u.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		s.logger.WithError(err).Error("Error generating refresh token")
		return "", "", ErrInternalError
	}
	return accessToken, refreshToken, nil
}

func (s *service) getUser(ctx context.Context, userID string) (*user.User, error) {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("Error loading user")
		return nil, ErrInternalError
	}
	return existingUser, nil
}

// Login returns an access and a refresh token. When two-factor is enabled
// it returns a session token instead and an empty refresh token.
func (s *service) Login(ctx context.Context, emailOrLogin, password string) (*user.User, string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(ctx, emailOrLogin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		s.logger.WithError(err).Error("Error loading user for login")
		return nil, "", "", ErrInternalError
	}

	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		s.logger.WithField("user_id", existingUser.ID).Warn("Failed login attempt")
		return nil, "", "", ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID, defaultSessionTokenDuration)
		if err != nil {
			return nil, "", "", ErrInternalError
		}
		return existingUser, sessionToken, "", nil
	}

	accessToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}
	s.logger.WithField("user_id", existingUser.ID).Info("User logged in")
	return existingUser, accessToken, refreshToken, nil
}

func (s *service) VerifyTwoFactor(ctx context.Context, sessionToken, code string) (*user.User, string, string, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return nil, "", "", err
	}
	existingUser, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, "", "", err
	}
	if !existingUser.TwoFactorEnabled {
		return nil, "", "", ErrUser2FANotEnabled
	}

	if err := s.checkCode(ctx, userID, code); err != nil {
		return nil, "", "", err
	}
	s.sessionManager.DeleteSessionToken(sessionToken)

	accessToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}
	s.logger.WithField("user_id", existingUser.ID).Info("User logged in with two-factor")
	return existingUser, accessToken, refreshToken, nil
}

// checkCode validates a TOTP code against the stored secret of userID.
func (s *service) checkCode(ctx context.Context, userID, code string) error {
	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrTwoFactorSecretNotFound) {
			return ErrTwoFactorNotRegistered
		}
		s.logger.WithError(err).Error("Error loading two-factor secret")
		return ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}
	return nil
}

// RegisterTwoFactor stores a new TOTP secret and returns its otpauth URI.
// Two-factor stays disabled until VerifyTwoFactorRegistration succeeds.
func (s *service) RegisterTwoFactor(ctx context.Context, userID string) (string, error) {
	existingUser, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
	if err != nil {
		s.logger.WithError(err).Error("Error generating TOTP secret")
		return "", ErrInternalError
	}
	if err := s.repo.SaveTwoFactorSecret(ctx, userID, secret); err != nil {
		s.logger.WithError(err).Error("Error saving TOTP secret")
		return "", ErrInternalError
	}
	return otpURI, nil
}

func (s *service) VerifyTwoFactorRegistration(ctx context.Context, userID, code string) error {
	existingUser, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}
	if err := s.checkCode(ctx, userID, code); err != nil {
		return err
	}

	if err := s.userService.SetTwoFactorEnabled(ctx, userID, true); err != nil {
		s.logger.WithError(err).Error("Error enabling two-factor")
		return ErrInternalError
	}
	s.logger.WithField("user_id", userID).Info("Two-factor enabled")
	return nil
}

func (s *service) DisableTwoFactor(ctx context.Context, userID, code string) error {
	existingUser, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}
	if err := s.checkCode(ctx, userID, code); err != nil {
		return err
	}

	if err := s.userService.SetTwoFactorEnabled(ctx, userID, false); err != nil {
		s.logger.WithError(err).Error("Error disabling two-factor")
		return ErrInternalError
	}
	if err := s.repo.DeleteTwoFactorSecret(ctx, userID); err != nil {
		s.logger.WithError(err).Error("Error deleting TOTP secret")
		return ErrInternalError
	}
	s.logger.WithField("user_id", userID).Info("Two-factor disabled")
	return nil
}

// RefreshAccessToken trusts userID, the refresh middleware has already
// validated the refresh token.
func (s *service) RefreshAccessToken(ctx context.Context, userID string) (string, string, error) {
	existingUser, err := s.getUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return s.issueTokens(existingUser)
}

func (s *service) PurgeExpiredSessions() int {
	return s.sessionManager.PurgeExpired()
}
