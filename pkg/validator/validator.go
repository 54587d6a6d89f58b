package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateRegister(email, fullName, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Full name
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		errs.Add("full_name", "Full name is required")
	} else if len(fullName) < 2 {
		errs.Add("full_name", "Full name must be at least 2 characters")
	} else if len(fullName) > 100 {
		errs.Add("full_name", "Full name is too long")
	}

	// Password
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
