// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. bcrypt ignores input past 72 bytes, so the upper
// bound keeps users from believing the tail of a long passphrase counts.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrPasswordCommon   = errors.New("password too common")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

var commonPasswords = map[string]struct{}{
	"password":   {},
	"12345678":   {},
	"123456789":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"password1":  {},
	"football":   {},
	"baseball":   {},
	"welcome1":   {},
	"abc12345":   {},
	"sunshine":   {},
	"letmein1":   {},
}

// ValidatePassword checks length and rejects well-known passwords.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return ErrPasswordCommon
	}
	return nil
}

// ValidateNewPassword runs ValidatePassword and checks the confirmation.
func ValidateNewPassword(pw, confirm string) error {
	if err := ValidatePassword(pw); err != nil {
		return err
	}
	if pw != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// PasswordMessage turns a validation error into text for a form.
func PasswordMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)
	case errors.Is(err, ErrPasswordTooLong):
		return fmt.Sprintf("Password must be at most %d characters.", MaxPasswordLength)
	case errors.Is(err, ErrPasswordCommon):
		return "That password is too common. Please choose another."
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match."
	default:
		return "Invalid password."
	}
}

// PasswordRules describes the password policy for display.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters. Common passwords are not allowed.", MinPasswordLength)
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
