package auth

import (
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a new TOTP secret and its otpauth provisioning
// URL. The secret is not persisted here; callers commit it only after the
// immediately following verify succeeds.
func GenerateTOTPSecret(issuer, account string) (secret string, url string, err error) {
	if strings.TrimSpace(issuer) == "" || strings.TrimSpace(account) == "" {
		return "", "", fmt.Errorf("issuer and account are required")
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", "", fmt.Errorf("generating totp secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a 6-digit code against the secret for the current window.
func VerifyTOTP(secret, code string) bool {
	if strings.TrimSpace(secret) == "" || strings.TrimSpace(code) == "" {
		return false
	}
	return totp.Validate(strings.TrimSpace(code), secret)
}
