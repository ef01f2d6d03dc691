package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range input to a factory or
// setter. It maps to a 400-class failure at the API boundary.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RuleError reports an operation that is not permitted in the current
// state (role mismatch, illegal status transition, cross-currency
// arithmetic). Distinct from ValidationError: the input is well-formed,
// the operation itself is disallowed.
type RuleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RuleError) Error() string {
	return e.Message
}

// Common rule error codes
const (
	CodeCurrencyMismatch  = "CURRENCY_MISMATCH"
	CodeNotTrader         = "NOT_TRADER"
	CodeNoOverride        = "NO_OVERRIDE"
	CodeNoPhone           = "NO_PHONE"
	CodePhoneVerified     = "PHONE_ALREADY_VERIFIED"
	CodeAlreadySuspended  = "ALREADY_SUSPENDED"
	CodeAlreadyActive     = "ALREADY_ACTIVE"
	CodeAlreadyDeleted    = "ALREADY_DELETED"
	CodeUserDeleted       = "USER_DELETED"
	CodeDivideByZero      = "DIVIDE_BY_ZERO"
)

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func ruleErr(code, message string) error {
	return &RuleError{Code: code, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRuleViolation reports whether err is (or wraps) a RuleError.
func IsRuleViolation(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// RuleCode returns the code of a wrapped RuleError, or "" when err is not one.
func RuleCode(err error) string {
	var re *RuleError
	if !errors.As(err, &re) {
		return ""
	}
	return re.Code
}
