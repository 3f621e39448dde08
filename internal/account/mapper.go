package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ppluzka/pricehistory/internal/identity"
	apperrors "github.com/ppluzka/pricehistory/internal/platform/errors"
)

// The credential store reports failures as error strings. The mapper matches
// known substrings onto the stable taxonomy; anything unmatched becomes a
// generic internal error so raw store text never reaches a client.

// WEAK_PASSWORD surfaces with a different status depending on the path the
// original contract exposed: 422 on reset, 400 everywhere else.
const (
	weakPasswordStatusReset  = http.StatusUnprocessableEntity
	weakPasswordStatusChange = http.StatusBadRequest
)

func mapRegisterError(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return apperrors.Internal(CodeRegistrationError, "Registration failed. Please try again.", err)
	}

	switch {
	case matchesAny(apiErr, "already registered", "already exists", "user_already_exists", "email_exists"):
		return apperrors.Conflict(CodeEmailAlreadyExists, "An account with this email address already exists.")
	case isWeakPassword(apiErr):
		return apperrors.Validation(CodeWeakPassword, "This password is too weak. Please choose a stronger one.")
	default:
		return apperrors.Internal(CodeRegistrationError, "Registration failed. Please try again.", err)
	}
}

func mapLoginError(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return apperrors.Internal(CodeAuthError, "Login failed. Please try again.", err)
	}

	switch {
	case matchesAny(apiErr, "invalid login credentials", "invalid_credentials", "invalid grant"):
		return apperrors.Unauthorized(CodeInvalidCredentials, "Incorrect email or password.")
	case matchesAny(apiErr, "email not confirmed", "email_not_confirmed"):
		return apperrors.Forbidden(CodeEmailNotVerified, "Please verify your email address before logging in.")
	default:
		return apperrors.Internal(CodeAuthError, "Login failed. Please try again.", err)
	}
}

// mapReauthError classifies the freshness re-authentication inside
// change-password. A credential rejection means the typed current password is
// wrong; anything else is infrastructure.
func mapReauthError(err error) error {
	apiErr, ok := asAPIError(err)
	if ok && matchesAny(apiErr, "invalid login credentials", "invalid_credentials", "invalid grant") {
		return apperrors.Unauthorized(CodeInvalidCurrentPassword, "The current password you entered is incorrect.")
	}
	return apperrors.Internal(CodeAuthError, "Could not verify your current password. Please try again.", err)
}

// mapResetSessionError turns a failed strong user lookup into the reset
// taxonomy: no valid reset session means the link is dead.
func mapResetSessionError(err error) error {
	if apiErr, ok := asAPIError(err); ok && apiErr.Status < http.StatusInternalServerError {
		return apperrors.Unauthorized(CodeInvalidToken, "Your reset link is invalid or has expired.")
	}
	return apperrors.Internal(CodeAuthError, "Could not verify your reset link. Please try again.", err)
}

func mapPasswordUpdateError(err error, weakStatus int) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return apperrors.Internal(CodeUpdateFailed, "Could not update your password. Please try again.", err)
	}

	if isWeakPassword(apiErr) {
		return apperrors.Validation(CodeWeakPassword, "This password is too weak. Please choose a stronger one.").
			WithStatus(weakStatus)
	}
	return apperrors.Validation(CodeUpdateFailed, "Could not update your password. Please try again.")
}

func mapResendError(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return apperrors.Internal(CodeResendError, "Could not send the verification email. Please try again.", err)
	}

	switch {
	case apiErr.Status == http.StatusTooManyRequests || matchesAny(apiErr, "rate limit", "too many"):
		return apperrors.RateLimited(CodeRateLimitExceeded, "Too many verification emails requested. Please wait before trying again.")
	case matchesAny(apiErr, "already confirmed", "already verified", "user not found", "not found"):
		// Revealing that an address is verified or unknown would leak account
		// existence; these report the same generic success as the happy path.
		return nil
	default:
		return apperrors.Internal(CodeResendError, "Could not send the verification email. Please try again.", err)
	}
}

// isTokenRejection reports whether the store refused the token itself, as
// opposed to failing to answer.
func isTokenRejection(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusNotFound)
}

func isWeakPassword(apiErr *identity.APIError) bool {
	return matchesAny(apiErr, "weak", "password should be", "weak_password")
}

func asAPIError(err error) (*identity.APIError, bool) {
	var apiErr *identity.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func matchesAny(apiErr *identity.APIError, substrings ...string) bool {
	message := strings.ToLower(apiErr.Message)
	code := strings.ToLower(apiErr.Code)
	for _, sub := range substrings {
		if strings.Contains(message, sub) || (code != "" && strings.Contains(code, sub)) {
			return true
		}
	}
	return false
}
