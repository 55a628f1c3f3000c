package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword_Valid(t *testing.T) {
	validPasswords := []string{
		"secure123",
		"MyP@ssw0rd",
		"abcdefgh", // exactly the minimum
	}

	for _, pw := range validPasswords {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", pw, err)
		}
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	for _, pw := range []string{"", "a", "abcdefg"} {
		if err := ValidatePassword(pw); err != ErrPasswordTooShort {
			t.Errorf("expected ErrPasswordTooShort for %q, got %v", pw, err)
		}
	}
}

func TestValidatePassword_TooLong(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", MaxPasswordLength+1)); err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestValidatePassword_AtMaxLength(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", MaxPasswordLength)); err != nil {
		t.Errorf("expected password at max length to be valid, got %v", err)
	}
}

func TestValidatePassword_CommonCaseInsensitive(t *testing.T) {
	for _, pw := range []string{"password", "PASSWORD", "Password1", "FootBall"} {
		if err := ValidatePassword(pw); err != ErrPasswordCommon {
			t.Errorf("expected ErrPasswordCommon for %q, got %v", pw, err)
		}
	}
}

func TestValidateNewPassword_Mismatch(t *testing.T) {
	if err := ValidateNewPassword("secure123", "secure124"); err != ErrPasswordMismatch {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := ValidateNewPassword("secure123", "secure123"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestPasswordMessage(t *testing.T) {
	if msg := PasswordMessage(ErrPasswordTooShort); !strings.Contains(msg, "8") {
		t.Errorf("expected minimum length in %q", msg)
	}
	if msg := PasswordMessage(ErrPasswordMismatch); msg != "Passwords do not match." {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	hash1, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash1 == "SecurePassword123" || hash1[0] != '$' {
		t.Errorf("unexpected hash %q", hash1)
	}
	if hash1 == hash2 {
		t.Error("expected different hashes for same password (random salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword("SecurePassword123", hash) {
		t.Error("expected correct password to match")
	}
	if CheckPassword("WrongPassword456", hash) {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword("", hash) {
		t.Error("expected empty password to fail")
	}
	if CheckPassword("password", "not-a-valid-hash") {
		t.Error("expected invalid hash to fail")
	}
}

func TestPasswordRules(t *testing.T) {
	if rules := PasswordRules(); !strings.Contains(rules, "8") {
		t.Errorf("expected PasswordRules to mention minimum length, got %q", rules)
	}
}
