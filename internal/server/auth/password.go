package auth

import (
	"unicode"

	"github.com/accordai/gateway/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against on the unknown-user login path so that a
// failed lookup costs the same as a failed password check.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// HashPassword produces a bcrypt digest of the given password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// The comparison inside bcrypt is constant-time.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck performs a bcrypt comparison against a fixed dummy hash
// and discards the result. Used to level timing between the unknown-user and
// wrong-password login failures.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// ValidatePasswordStrength enforces the signup password policy: at least
// 8 characters containing at least one letter and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return common.ErrValidation
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return common.ErrValidation
	}
	return nil
}
