package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the bcrypt cost factor used when the
	// configured cost is out of range.
	DefaultBcryptCost = 12

	// MinPasswordLength is the platform-wide minimum password length.
	MinPasswordLength = 8

	// MaxPasswordLength matches the bcrypt input limit: bytes beyond 72
	// never contribute to the hash, so longer passwords are rejected
	// instead of silently truncated.
	MaxPasswordLength = 72

	// minCharacterClasses is how many of the four character classes
	// (upper, lower, digit, symbol) a password must mix.
	minCharacterClasses = 3
)

// PasswordManager hashes credentials and enforces the platform password
// policy.
type PasswordManager struct {
	bcryptCost        int
	minPasswordLength int
}

// NewPasswordManager creates a password manager. Out-of-range costs fall
// back to DefaultBcryptCost; the minimum length is never relaxed below
// MinPasswordLength.
func NewPasswordManager(bcryptCost, minLength int) *PasswordManager {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	if minLength < MinPasswordLength {
		minLength = MinPasswordLength
	}
	return &PasswordManager{
		bcryptCost:        bcryptCost,
		minPasswordLength: minLength,
	}
}

// HashPassword produces a bcrypt hash of the password.
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("password exceeds %d bytes", MaxPasswordLength)
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bytes), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func (p *PasswordManager) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength enforces the platform policy: length within
// bounds and at least minCharacterClasses distinct character classes.
func (p *PasswordManager) ValidatePasswordStrength(password string) error {
	if len(password) < p.minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", p.minPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	if countCharacterClasses(password) < minCharacterClasses {
		return fmt.Errorf("password must mix at least %d of: uppercase, lowercase, numbers, special characters", minCharacterClasses)
	}

	return nil
}

func countCharacterClasses(password string) int {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	classes := 0
	for _, present := range []bool{upper, lower, digit, symbol} {
		if present {
			classes++
		}
	}
	return classes
}

// HashRefreshToken derives the SHA-256 storage key for a refresh token.
// Sessions are keyed by this hash so a session store dump never exposes
// usable tokens.
func HashRefreshToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
