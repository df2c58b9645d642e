package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidJWTToken        = errors.New("JWT token is invalid")
	ErrExpiredJWTToken        = errors.New("JWT token is expired")
	ErrInvalidJWTRefreshToken = errors.New("JWT Refresh token is invalid")
)

const defaultJWTRefreshDuration = 720 * time.Hour
const defaultJWTDuration = 10 * time.Minute

// Audiences keep access and refresh tokens from standing in for each other.
const (
	accessAudience  = "access"
	refreshAudience = "refresh"
)

type JWTManagerInterface interface {
	GenerateAccessJWT(user string, duration time.Duration) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
	GenerateRefreshJWT(userID, tokenHash string, duration time.Duration) (string, error)
	ValidateRefreshToken(tokenString, tokenHash string) error
	ExtractUserIDFromRefreshToken(tokenString string) (string, error)
}

type AccessTokenCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

type RefreshTokenCustomClaims struct {
	UserID string `json:"user_id"`
	CusKey string `json:"cus_key"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret string
}

// NewJWTManager signs every token with HS256 and the given secret.
func NewJWTManager(secret string) JWTManagerInterface {
	return &JWTManager{
		secret: secret,
	}
}

// generateCustomKey binds a refresh token to the user's current hash token,
// rotating the hash token revokes every refresh token issued before.
func (j *JWTManager) generateCustomKey(userID string, tokenHash string) string {
	h := hmac.New(sha256.New, []byte(tokenHash))
	h.Write([]byte(userID))
	sha := hex.EncodeToString(h.Sum(nil))
	return sha
}

func (j *JWTManager) standardClaims(userID, audience string, duration time.Duration) jwt.StandardClaims {
	now := time.Now()
	return jwt.StandardClaims{
		Subject:   userID,
		Audience:  audience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(duration).Unix(),
	}
}

func (j *JWTManager) GenerateRefreshJWT(userID, tokenHash string, duration time.Duration) (string, error) {
	claims := &RefreshTokenCustomClaims{
		UserID:         userID,
		CusKey:         j.generateCustomKey(userID, tokenHash),
		StandardClaims: j.standardClaims(userID, refreshAudience, duration),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) GenerateAccessJWT(userID string, duration time.Duration) (string, error) {
	claims := &AccessTokenCustomClaims{
		UserID:         userID,
		StandardClaims: j.standardClaims(userID, accessAudience, duration),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidJWTToken
	}
	return []byte(j.secret), nil
}

// parse verifies the signature and expiry of tokenString into claims.
func (j *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc)
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return ErrExpiredJWTToken
		}
		return ErrInvalidJWTToken
	}
	if !token.Valid {
		return ErrInvalidJWTToken
	}
	return nil
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	claims := &AccessTokenCustomClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.UserID == "" || !claims.VerifyAudience(accessAudience, true) {
		return "", ErrInvalidJWTToken
	}
	return claims.UserID, nil
}

func (j *JWTManager) parseRefresh(tokenString string) (*RefreshTokenCustomClaims, error) {
	claims := &RefreshTokenCustomClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" || !claims.VerifyAudience(refreshAudience, true) {
		return nil, ErrInvalidJWTRefreshToken
	}
	return claims, nil
}

func (j *JWTManager) ExtractUserIDFromRefreshToken(tokenString string) (string, error) {
	claims, err := j.parseRefresh(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (j *JWTManager) ValidateRefreshToken(tokenString, tokenHash string) error {
	claims, err := j.parseRefresh(tokenString)
	if err != nil {
		return err
	}

	expectedCusKey := j.generateCustomKey(claims.UserID, tokenHash)
	if !hmac.Equal([]byte(claims.CusKey), []byte(expectedCusKey)) {
		return ErrInvalidJWTRefreshToken
	}
	return nil
}
