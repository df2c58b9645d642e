package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "ExpenseTracker"

type TwoFactorAuthenticator interface {
	GenerateSecret(accountName string) (otpURI string, secret string, err error)
	VerifyCode(secret, code string) bool
}

// Authenticator issues TOTP secrets compatible with Google Authenticator,
// which only supports SHA1.
type Authenticator struct{}

func (g Authenticator) GenerateSecret(accountName string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.URL(), key.Secret(), nil
}

func (g Authenticator) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
