package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 256
	maxNameLen     = 100
	minPasswordLen = 8

	passwordSymbols = "#$^+=!*()@%&"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
	}))
	must(v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return passwordPolicyViolation(fl.Field().String()) == ""
	}))
	must(v.RegisterValidation("dotted_domain", func(fl validator.FieldLevel) bool {
		_, domain, ok := strings.Cut(fl.Field().String(), "@")
		return ok && strings.Contains(domain, ".")
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// fieldChecks collects field errors so a caller sees every problem at once.
type fieldChecks struct {
	fields map[string]string
}

func (v *fieldChecks) fail(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = msg
	}
}

// check runs tag against value and records msg for field on failure.
func (v *fieldChecks) check(field string, value any, tag, msg string) bool {
	if err := validate.Var(value, tag); err != nil {
		v.fail(field, msg)
		return false
	}
	return true
}

func (v *fieldChecks) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *fieldChecks) username(value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(FieldUsername, "username is required")
		return
	}
	lengths := fmt.Sprintf("min=%d,max=%d", minUsernameLen, maxUsernameLen)
	if !v.check(FieldUsername, value, lengths,
		fmt.Sprintf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)) {
		return
	}
	v.check(FieldUsername, value, "nospace", "username must not contain whitespace")
}

func (v *fieldChecks) email(value string, required bool) {
	if value == "" {
		if required {
			v.fail(FieldEmail, "email is required")
		}
		return
	}
	if !IsValidEmail(value) {
		v.fail(FieldEmail, "email is not a valid address")
	}
}

func (v *fieldChecks) password(field, value string) {
	if !v.check(field, value, "required", "password is required") {
		return
	}
	if !v.check(field, value, fmt.Sprintf("min=%d", minPasswordLen),
		fmt.Sprintf("password must be at least %d characters", minPasswordLen)) {
		return
	}
	v.check(field, value, "password_policy",
		"password needs a lower-case letter, an upper-case letter, a digit and one of "+passwordSymbols)
}

func (v *fieldChecks) name(field, value string, required bool) {
	if required && strings.TrimSpace(value) == "" {
		v.fail(field, field+" is required")
		return
	}
	v.check(field, value, fmt.Sprintf("max=%d", maxNameLen),
		fmt.Sprintf("%s must be at most %d characters", field, maxNameLen))
}

// IsValidEmail accepts a bare address, no display name, with a dotted domain.
func IsValidEmail(s string) bool {
	return validate.Var(s, "required,email,dotted_domain") == nil
}

// passwordPolicyViolation returns "" when the password has at least eight
// characters including a lower-case letter, an upper-case letter, a digit
// and one of passwordSymbols.
func passwordPolicyViolation(p string) string {
	if len([]rune(p)) < minPasswordLen {
		return fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}

	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	if !lower || !upper || !digit || !symbol {
		return "password needs a lower-case letter, an upper-case letter, a digit and one of " + passwordSymbols
	}
	return ""
}
