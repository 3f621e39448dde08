package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail_Empty(t *testing.T) {
	for _, value := range []string{"", "   ", "\t\n"} {
		issues := Email(value)
		require.Len(t, issues, 1)
		assert.Equal(t, "email", issues[0].Field)
		assert.Equal(t, IssueEmpty, issues[0].Issue)
	}
}

func TestEmail_InvalidFormat(t *testing.T) {
	invalid := []string{
		"no-at-sign",
		"user@",
		"@domain.com",
		"user@domain",     // no TLD
		"user name@x.com", // whitespace in local part
		"user@dom ain.com",
	}
	for _, value := range invalid {
		issues := Email(value)
		require.Len(t, issues, 1, "value: %q", value)
		assert.Equal(t, IssueInvalidFormat, issues[0].Issue, "value: %q", value)
	}
}

func TestEmail_WithoutAtSignAlwaysInvalidFormat(t *testing.T) {
	// Any non-blank string without an @ must fail as INVALID_FORMAT, never
	// anything else.
	for _, value := range []string{"a", "user.example.com", strings.Repeat("x", 300)} {
		issues := Email(value)
		require.Len(t, issues, 1)
		assert.Equal(t, IssueInvalidFormat, issues[0].Issue)
	}
}

func TestEmail_TooLong(t *testing.T) {
	local := strings.Repeat("a", 250)
	issues := Email(local + "@example.com") // 262 chars, well-shaped
	require.Len(t, issues, 1)
	assert.Equal(t, IssueTooLong, issues[0].Issue)
}

func TestEmail_Valid(t *testing.T) {
	for _, value := range []string{"user@example.com", "a@b.co", " padded@example.com "} {
		assert.Empty(t, Email(value), "value: %q", value)
	}
}

func TestPassword_Empty(t *testing.T) {
	issues := Password("")
	require.Len(t, issues, 1)
	assert.Equal(t, IssueEmpty, issues[0].Issue)
}

func TestPassword_LengthBoundary(t *testing.T) {
	issues := Password("1234567") // 7 chars
	require.Len(t, issues, 1)
	assert.Equal(t, IssueTooShort, issues[0].Issue)

	assert.Empty(t, Password("12345678")) // exactly 8 succeeds
}

func TestPassword_NoUpperBound(t *testing.T) {
	assert.Empty(t, Password(strings.Repeat("x", 500)))
}

func TestPasswordField_ReportsUnderGivenName(t *testing.T) {
	issues := PasswordField("newPassword", "short")
	require.Len(t, issues, 1)
	assert.Equal(t, "newPassword", issues[0].Field)
	assert.Equal(t, IssueTooShort, issues[0].Issue)
}

func TestPasswordForReset_CarriesStoreCap(t *testing.T) {
	assert.Empty(t, PasswordForReset(strings.Repeat("x", 72)))

	issues := PasswordForReset(strings.Repeat("x", 73))
	require.Len(t, issues, 1)
	assert.Equal(t, IssueTooLong, issues[0].Issue)
}

func TestConfirmation_ExactMatchOnly(t *testing.T) {
	assert.Empty(t, Confirmation("USUŃ", "USUŃ"))

	for _, value := range []string{"usuń", "USUŃ ", " USUŃ", "USUŃ extra", "USU", "USUN", ""} {
		issues := Confirmation(value, "USUŃ")
		require.Len(t, issues, 1, "value: %q", value)
		assert.Equal(t, "confirmation", issues[0].Field)
		assert.Equal(t, IssueMismatch, issues[0].Issue)
	}
}
