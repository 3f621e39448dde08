package account

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppluzka/pricehistory/internal/identity"
	apperrors "github.com/ppluzka/pricehistory/internal/platform/errors"
)

func storeError(status int, message string) error {
	return &identity.APIError{Status: status, Message: message}
}

func requireAppError(t *testing.T, err error, code string, status int) *apperrors.Error {
	t.Helper()
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.HTTPStatus())
	return appErr
}

func TestMapRegisterError_DuplicateEmail(t *testing.T) {
	duplicates := []error{
		storeError(http.StatusUnprocessableEntity, "User already registered"),
		storeError(http.StatusBadRequest, "A user with this email already exists"),
		&identity.APIError{Status: http.StatusUnprocessableEntity, Code: "user_already_exists"},
	}
	for _, err := range duplicates {
		requireAppError(t, mapRegisterError(err), CodeEmailAlreadyExists, http.StatusConflict)
	}
}

func TestMapRegisterError_WeakPassword(t *testing.T) {
	err := mapRegisterError(storeError(http.StatusUnprocessableEntity, "Password should be at least 8 characters"))
	requireAppError(t, err, CodeWeakPassword, http.StatusBadRequest)
}

func TestMapRegisterError_UnknownStoreTextNeverLeaks(t *testing.T) {
	err := mapRegisterError(storeError(http.StatusInternalServerError, "pq: relation auth.users is locked"))
	appErr := requireAppError(t, err, CodeRegistrationError, http.StatusInternalServerError)
	assert.NotContains(t, appErr.Message, "pq:")
	assert.NotContains(t, appErr.ToResponse().Error, "relation")
}

func TestMapRegisterError_NonStoreError(t *testing.T) {
	err := mapRegisterError(fmt.Errorf("dial tcp: %w", errors.New("connection refused")))
	requireAppError(t, err, CodeRegistrationError, http.StatusInternalServerError)
}

func TestMapLoginError_InvalidCredentials(t *testing.T) {
	variants := []error{
		storeError(http.StatusBadRequest, "Invalid login credentials"),
		&identity.APIError{Status: http.StatusBadRequest, Code: "invalid_credentials"},
		storeError(http.StatusBadRequest, "invalid grant"),
	}
	for _, err := range variants {
		requireAppError(t, mapLoginError(err), CodeInvalidCredentials, http.StatusUnauthorized)
	}
}

func TestMapLoginError_UnverifiedEmail(t *testing.T) {
	err := mapLoginError(storeError(http.StatusBadRequest, "Email not confirmed"))
	requireAppError(t, err, CodeEmailNotVerified, http.StatusForbidden)
}

func TestMapLoginError_Unknown(t *testing.T) {
	err := mapLoginError(storeError(http.StatusBadGateway, "upstream timeout"))
	requireAppError(t, err, CodeAuthError, http.StatusInternalServerError)
}

func TestMapReauthError(t *testing.T) {
	err := mapReauthError(storeError(http.StatusBadRequest, "Invalid login credentials"))
	requireAppError(t, err, CodeInvalidCurrentPassword, http.StatusUnauthorized)

	err = mapReauthError(errors.New("network down"))
	requireAppError(t, err, CodeAuthError, http.StatusInternalServerError)
}

func TestMapResetSessionError(t *testing.T) {
	// Any 4xx on the user lookup means the reset session is dead.
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		err := mapResetSessionError(storeError(status, "invalid token"))
		requireAppError(t, err, CodeInvalidToken, http.StatusUnauthorized)
	}

	err := mapResetSessionError(storeError(http.StatusBadGateway, "upstream down"))
	requireAppError(t, err, CodeAuthError, http.StatusInternalServerError)
}

func TestMapPasswordUpdateError_WeakStatusDependsOnPath(t *testing.T) {
	weak := storeError(http.StatusUnprocessableEntity, "Password is too weak")

	err := mapPasswordUpdateError(weak, weakPasswordStatusReset)
	requireAppError(t, err, CodeWeakPassword, http.StatusUnprocessableEntity)

	err = mapPasswordUpdateError(weak, weakPasswordStatusChange)
	requireAppError(t, err, CodeWeakPassword, http.StatusBadRequest)
}

func TestMapPasswordUpdateError_OtherStoreRejection(t *testing.T) {
	err := mapPasswordUpdateError(storeError(http.StatusBadRequest, "New password should differ"), weakPasswordStatusChange)
	requireAppError(t, err, CodeUpdateFailed, http.StatusBadRequest)
}

func TestMapResendError_Throttled(t *testing.T) {
	variants := []error{
		storeError(http.StatusTooManyRequests, "over_email_send_rate_limit"),
		storeError(http.StatusBadRequest, "For security purposes, you can only request this after 60 seconds (rate limit)"),
	}
	for _, err := range variants {
		requireAppError(t, mapResendError(err), CodeRateLimitExceeded, http.StatusTooManyRequests)
	}
}

func TestMapResendError_BenignOutcomesReportSuccess(t *testing.T) {
	// Leaking "already verified" or "no such user" would confirm account
	// existence to a stranger; both collapse into success.
	benign := []error{
		storeError(http.StatusBadRequest, "Email address already confirmed"),
		storeError(http.StatusNotFound, "User not found"),
	}
	for _, err := range benign {
		assert.NoError(t, mapResendError(err))
	}
}

func TestMapResendError_Unknown(t *testing.T) {
	err := mapResendError(storeError(http.StatusInternalServerError, "smtp relay down"))
	requireAppError(t, err, CodeResendError, http.StatusInternalServerError)
}

func TestIsTokenRejection(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		assert.True(t, isTokenRejection(storeError(status, "no")), "status: %d", status)
	}
	assert.False(t, isTokenRejection(storeError(http.StatusInternalServerError, "down")))
	assert.False(t, isTokenRejection(errors.New("timeout")))
}

func TestMatchesAny_CoversMessageAndCode(t *testing.T) {
	byMessage := &identity.APIError{Status: 400, Message: "User ALREADY Registered"}
	assert.True(t, matchesAny(byMessage, "already registered"))

	byCode := &identity.APIError{Status: 400, Code: "weak_password"}
	assert.True(t, matchesAny(byCode, "weak"))

	neither := &identity.APIError{Status: 400, Message: "something else"}
	assert.False(t, matchesAny(neither, "already registered", "weak"))
}
