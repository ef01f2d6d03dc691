package domain

import (
	"regexp"
	"strings"
)

var bcryptHashPattern = regexp.MustCompile(`^\$2[ayb]\$\d{2}\$[./A-Za-z0-9]{53}$`)

// PasswordHash is an opaque, format-checked bcrypt hash. Hashing and
// verification live outside the domain (internal/auth); the domain only
// stores a hash that is already well-formed.
type PasswordHash struct {
	value string
}

// NewPasswordHash wraps an existing bcrypt hash, rejecting anything that
// is not in bcrypt's modular crypt format.
func NewPasswordHash(hash string) (PasswordHash, error) {
	if strings.TrimSpace(hash) == "" {
		return PasswordHash{}, validationErr("passwordHash", "password hash cannot be empty")
	}
	if !bcryptHashPattern.MatchString(hash) {
		return PasswordHash{}, validationErr("passwordHash", "invalid bcrypt hash format")
	}
	return PasswordHash{value: hash}, nil
}

// Value returns the raw hash for storage or verification.
func (h PasswordHash) Value() string { return h.value }

// Equal reports whether two hashes are byte-identical.
func (h PasswordHash) Equal(other PasswordHash) bool { return h.value == other.value }

// String never exposes the hash.
func (h PasswordHash) String() string { return "***REDACTED***" }
