package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxEmailLength bounds stored email addresses.
const MaxEmailLength = 255

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email is a validated, normalized (trimmed, lowercased) email address.
type Email struct {
	value string
}

// NewEmail validates and normalizes an email address.
func NewEmail(raw string) (Email, error) {
	if strings.TrimSpace(raw) == "" {
		return Email{}, validationErr("email", "email cannot be empty")
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	if len(normalized) > MaxEmailLength {
		return Email{}, validationErr("email", fmt.Sprintf("email cannot exceed %d characters", MaxEmailLength))
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, validationErr("email", "invalid email format: "+raw)
	}

	return Email{value: normalized}, nil
}

// Value returns the normalized address.
func (e Email) Value() string { return e.value }

// Equal reports whether two addresses are the same after normalization.
func (e Email) Equal(other Email) bool { return e.value == other.value }

func (e Email) String() string { return e.value }
