// Package validation contains the pure field validators for the account
// endpoints. Validators perform no I/O and return issues instead of failing
// fast so callers can aggregate every problem into one response.
package validation

import (
	"regexp"
	"strings"

	apperrors "github.com/ppluzka/pricehistory/internal/platform/errors"
)

const (
	// maxEmailLength matches the credential store's column limit.
	maxEmailLength = 255
	// minPasswordLength is the product-wide password floor.
	minPasswordLength = 8
	// maxResetPasswordLength is an adapter constraint: the store's bcrypt
	// backend truncates at 72 bytes, and its reset endpoint rejects longer
	// inputs outright. Carried through only on the reset path.
	maxResetPasswordLength = 72
)

// Issue codes, stable for client branching.
const (
	IssueEmpty         = "EMPTY"
	IssueInvalidFormat = "INVALID_FORMAT"
	IssueTooLong       = "TOO_LONG"
	IssueTooShort      = "TOO_SHORT"
	IssueMismatch      = "MISMATCH"
)

// emailShape accepts a simple two-part local@domain.tld form. The store does
// the authoritative check; this only rejects obvious garbage early.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email validates an email address, returning zero or one issue.
func Email(value string) []apperrors.FieldIssue {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return fieldIssues("email", IssueEmpty)
	case !emailShape.MatchString(trimmed):
		return fieldIssues("email", IssueInvalidFormat)
	case len(trimmed) > maxEmailLength:
		return fieldIssues("email", IssueTooLong)
	}
	return nil
}

// Password validates a password against the product floor. No upper bound is
// enforced here; see PasswordForReset for the adapter-imposed cap.
func Password(value string) []apperrors.FieldIssue {
	return passwordIssues("password", value)
}

// PasswordField validates a password under a caller-chosen field name, so
// change-password can report against "newPassword" etc.
func PasswordField(field, value string) []apperrors.FieldIssue {
	return passwordIssues(field, value)
}

// PasswordForReset validates a password for the reset flow, which additionally
// carries the store's 72-character limit.
func PasswordForReset(value string) []apperrors.FieldIssue {
	if issues := passwordIssues("password", value); issues != nil {
		return issues
	}
	if len(value) > maxResetPasswordLength {
		return fieldIssues("password", IssueTooLong)
	}
	return nil
}

func passwordIssues(field, value string) []apperrors.FieldIssue {
	switch {
	case strings.TrimSpace(value) == "":
		return fieldIssues(field, IssueEmpty)
	case len(value) < minPasswordLength:
		return fieldIssues(field, IssueTooShort)
	}
	return nil
}

// Confirmation validates the typed deletion confirmation against the expected
// literal. Equality is exact: case-sensitive, no trimming.
func Confirmation(value, expected string) []apperrors.FieldIssue {
	if value != expected {
		return fieldIssues("confirmation", IssueMismatch)
	}
	return nil
}

func fieldIssues(field, issue string) []apperrors.FieldIssue {
	return []apperrors.FieldIssue{{Field: field, Issue: issue}}
}
