package services

import (
	"github.com/pquerna/otp/totp"
)

// GenerateTwoFactorSecret creates a new TOTP secret for the account.
// Returns the secret and the otpauth:// provisioning URL for QR display.
func GenerateTwoFactorSecret(username string) (secret string, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "octa-focus",
		AccountName: username,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTwoFactorCode checks a 6-digit TOTP code against the stored secret
func VerifyTwoFactorCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
