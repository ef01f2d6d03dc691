package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	countryCodePattern = regexp.MustCompile(`^\+\d{1,4}$`)
	phoneDigitsPattern = regexp.MustCompile(`^\d{8,15}$`)
	nonDigitPattern    = regexp.MustCompile(`[^\d]`)
)

// PhoneNumber stores an international phone number with the country code
// and digits kept separate (WhatsApp, 2FA, account recovery).
type PhoneNumber struct {
	countryCode string // e.g. "+55"
	number      string // digits only, e.g. "11987654321"
}

// NewPhoneNumber validates and normalizes a phone number. The country code
// gets a leading "+" when missing; the number is stripped to digits and
// must contain 8-15 of them.
func NewPhoneNumber(countryCode, number string) (PhoneNumber, error) {
	if strings.TrimSpace(countryCode) == "" {
		return PhoneNumber{}, validationErr("countryCode", "country code cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return PhoneNumber{}, validationErr("number", "phone number cannot be empty")
	}

	normalizedCode := strings.TrimSpace(countryCode)
	if !strings.HasPrefix(normalizedCode, "+") {
		normalizedCode = "+" + normalizedCode
	}
	if !countryCodePattern.MatchString(normalizedCode) {
		return PhoneNumber{}, validationErr("countryCode", "invalid country code format: "+countryCode)
	}

	normalizedNumber := nonDigitPattern.ReplaceAllString(number, "")
	if !phoneDigitsPattern.MatchString(normalizedNumber) {
		return PhoneNumber{}, validationErr("number",
			fmt.Sprintf("invalid phone number format: %s (must contain 8-15 digits)", number))
	}

	return PhoneNumber{countryCode: normalizedCode, number: normalizedNumber}, nil
}

// NewBrazilianPhone is a shortcut for +55 numbers.
func NewBrazilianPhone(number string) (PhoneNumber, error) {
	return NewPhoneNumber("+55", number)
}

// CountryCode returns the normalized country code including the "+".
func (p PhoneNumber) CountryCode() string { return p.countryCode }

// Number returns the digits-only local number.
func (p PhoneNumber) Number() string { return p.number }

// InternationalFormat renders the number for display, e.g.
// "+55 11 98765-4321" for Brazilian mobile numbers.
func (p PhoneNumber) InternationalFormat() string {
	if p.countryCode == "+55" && len(p.number) == 11 {
		return fmt.Sprintf("%s %s %s-%s", p.countryCode, p.number[:2], p.number[2:7], p.number[7:])
	}
	return p.countryCode + " " + p.number
}

// WhatsAppFormat renders the number without separators, e.g. "+5511987654321".
func (p PhoneNumber) WhatsAppFormat() string {
	return p.countryCode + p.number
}

// Equal reports structural equality.
func (p PhoneNumber) Equal(other PhoneNumber) bool {
	return p.countryCode == other.countryCode && p.number == other.number
}

func (p PhoneNumber) String() string { return p.InternationalFormat() }
