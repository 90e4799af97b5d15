// Package validation holds the contact field rules shared by the API server
// and its clients, so both sides reject the same input.
package validation

import (
	"regexp"
	"strings"
)

// Field names used as keys in Result.Errors.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

// Messages reported for invalid input.
const (
	MsgNameRequired   = "Name is required"
	MsgEmailRequired  = "Email is required"
	MsgInvalidEmail   = "Invalid email format"
	MsgPhoneRequired  = "Phone is required"
	MsgInvalidPhone   = "Phone must be 10 digits"
	MsgFieldsRequired = "All fields are required"
)

// The email pattern is deliberately loose: anything shaped like x@y.z passes.
var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPhone reports whether s is exactly ten decimal digits.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// Result is the outcome of ValidateContactInput.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// ValidateContactInput checks every field independently and collects one
// message per failing field.
func ValidateContactInput(name, email, phone string) Result {
	errs := make(map[string]string)

	if isBlank(name) {
		errs[FieldName] = MsgNameRequired
	}

	switch {
	case isBlank(email):
		errs[FieldEmail] = MsgEmailRequired
	case !IsValidEmail(email):
		errs[FieldEmail] = MsgInvalidEmail
	}

	switch {
	case isBlank(phone):
		errs[FieldPhone] = MsgPhoneRequired
	case !IsValidPhone(phone):
		errs[FieldPhone] = MsgInvalidPhone
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// CheckContact returns the first failing rule for a submission, or "" when
// the submission is acceptable. Missing fields are reported before format
// problems, and email before phone.
func CheckContact(name, email, phone string) string {
	if isBlank(name) || isBlank(email) || isBlank(phone) {
		return MsgFieldsRequired
	}
	if !IsValidEmail(email) {
		return MsgInvalidEmail
	}
	if !IsValidPhone(phone) {
		return MsgInvalidPhone
	}
	return ""
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
