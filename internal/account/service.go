package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ppluzka/pricehistory/internal/domain"
	"github.com/ppluzka/pricehistory/internal/featuregate"
	"github.com/ppluzka/pricehistory/internal/identity"
	apperrors "github.com/ppluzka/pricehistory/internal/platform/errors"
	"github.com/ppluzka/pricehistory/internal/validation"
)

// DeleteConfirmationPhrase is the literal a user must type verbatim before an
// irreversible account deletion proceeds. Comparison is case-sensitive and
// exact; "usuń" or "USUŃ " do not qualify.
const DeleteConfirmationPhrase = "USUŃ"

// Machine-stable error codes the front end branches on.
const (
	CodeValidation             = "VALIDATION"
	CodeFeatureDisabled        = "FEATURE_DISABLED"
	CodeEmailAlreadyExists     = "EMAIL_ALREADY_EXISTS"
	CodeWeakPassword           = "WEAK_PASSWORD"
	CodeRegistrationError      = "REGISTRATION_ERROR"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeEmailNotVerified       = "EMAIL_NOT_VERIFIED"
	CodeAuthError              = "AUTH_ERROR"
	CodeLogoutError            = "LOGOUT_ERROR"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeUpdateFailed           = "UPDATE_FAILED"
	CodeInvalidCurrentPassword = "INVALID_CURRENT_PASSWORD"
	CodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	CodeResendError            = "RESEND_ERROR"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeDeleteError            = "DELETE_ERROR"
)

// IdentityClient is the credential-store surface the orchestrator needs.
type IdentityClient interface {
	SignUp(ctx context.Context, p identity.SignUpParams) (*domain.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*domain.User, error)
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	ResendVerification(ctx context.Context, email, redirectTo string) error
	AdminDeleteUser(ctx context.Context, userID string) error
}

// AccountData purges the product data owned by a user before the store
// erases the account itself.
type AccountData interface {
	PurgeUserData(ctx context.Context, userID string) error
}

// ResendLimiter throttles verification-email resends per address before the
// store is even asked.
type ResendLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// Service orchestrates the account lifecycle. Stateless per request; safe for
// concurrent use.
type Service struct {
	gate        *featuregate.Gate
	ids         IdentityClient
	data        AccountData
	limiter     ResendLimiter
	clock       clockwork.Clock
	redirectURL string
}

// NewService wires the orchestrator. redirectURL is where the store sends
// users after consuming verification and reset links.
func NewService(gate *featuregate.Gate, ids IdentityClient, data AccountData, limiter ResendLimiter, clock clockwork.Clock, redirectURL string) *Service {
	return &Service{
		gate:        gate,
		ids:         ids,
		data:        data,
		limiter:     limiter,
		clock:       clock,
		redirectURL: redirectURL,
	}
}

// RegisterParams carries the registration request fields.
type RegisterParams struct {
	Email        string
	Password     string
	CaptchaToken string
}

// Register creates credentials at the store. The store dispatches the
// verification email; the account stays unverified until the link is
// consumed out-of-band.
func (s *Service) Register(ctx context.Context, p RegisterParams) (string, error) {
	if err := s.requireFeature(featuregate.FlagRegistration); err != nil {
		return "", err
	}

	email := normalizeEmail(p.Email)
	issues := validation.Email(email)
	issues = append(issues, validation.Password(p.Password)...)
	if len(issues) > 0 {
		return "", validationError(issues)
	}

	user, err := s.ids.SignUp(ctx, identity.SignUpParams{
		Email:        email,
		Password:     p.Password,
		CaptchaToken: p.CaptchaToken,
		RedirectTo:   s.redirectURL,
	})
	if err != nil {
		return "", mapRegisterError(err)
	}

	slog.InfoContext(ctx, "Account registered", "user_id", user.ID)
	return user.Email, nil
}

// Login authenticates credentials and returns the session the store issued.
// The caller persists it (the HTTP layer puts it in the cookie jar).
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := s.requireFeature(featuregate.FlagLogin); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	issues := validation.Email(email)
	issues = append(issues, validation.Password(password)...)
	if len(issues) > 0 {
		return nil, validationError(issues)
	}

	session, err := s.ids.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, mapLoginError(err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", session.UserID)
	return session, nil
}

// Logout invalidates the session at the store. A request without a session is
// a no-op success: there is nothing left to invalidate.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if err := s.requireFeature(featuregate.FlagLogin); err != nil {
		return err
	}
	if accessToken == "" {
		return nil
	}

	if err := s.ids.SignOut(ctx, accessToken); err != nil {
		return apperrors.Internal(CodeLogoutError, "Could not log you out. Please try again.", err)
	}
	return nil
}

// ForgotPassword requests a reset-email dispatch. Store errors are logged and
// swallowed: the response must be identical whether or not the address is
// registered, so an attacker cannot enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := s.requireFeature(featuregate.FlagPasswordReset); err != nil {
		return err
	}

	email = normalizeEmail(email)
	if issues := validation.Email(email); len(issues) > 0 {
		return validationError(issues)
	}

	if err := s.ids.RequestPasswordReset(ctx, email, s.redirectURL); err != nil {
		slog.WarnContext(ctx, "Password reset dispatch failed", "error", err)
	}
	return nil
}

// ResetPassword updates credentials inside a reset session established by the
// emailed link. The session is validated against the store's user endpoint,
// never a locally cached object, so a stale or forged session cannot pass.
func (s *Service) ResetPassword(ctx context.Context, accessToken, newPassword string) error {
	if err := s.requireFeature(featuregate.FlagPasswordReset); err != nil {
		return err
	}
	if accessToken == "" {
		return apperrors.Unauthorized(CodeInvalidToken, "Your reset link is invalid or has expired.")
	}

	if issues := validation.PasswordForReset(newPassword); len(issues) > 0 {
		return validationError(issues)
	}

	if _, err := s.ids.GetUser(ctx, accessToken); err != nil {
		return mapResetSessionError(err)
	}

	if err := s.ids.UpdatePassword(ctx, accessToken, newPassword); err != nil {
		return mapPasswordUpdateError(err, weakPasswordStatusReset)
	}
	return nil
}

// ChangePassword re-authenticates with the current password before accepting
// the new one. A valid-but-hijacked session alone cannot change the password;
// the attacker must also know the current secret.
func (s *Service) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	if err := s.requireFeature(featuregate.FlagPasswordReset); err != nil {
		return err
	}
	if accessToken == "" {
		return apperrors.Unauthorized(CodeUnauthorized, "You must be logged in to change your password.")
	}

	issues := validation.PasswordField("currentPassword", currentPassword)
	issues = append(issues, validation.PasswordField("newPassword", newPassword)...)
	if len(issues) > 0 {
		return validationError(issues)
	}

	user, err := s.ids.GetUser(ctx, accessToken)
	if err != nil {
		if isTokenRejection(err) {
			return apperrors.Unauthorized(CodeUnauthorized, "You must be logged in to change your password.")
		}
		return apperrors.Internal(CodeAuthError, "Could not verify your session. Please try again.", err)
	}

	if _, err := s.ids.SignInWithPassword(ctx, user.Email, currentPassword); err != nil {
		return mapReauthError(err)
	}

	if err := s.ids.UpdatePassword(ctx, accessToken, newPassword); err != nil {
		return mapPasswordUpdateError(err, weakPasswordStatusChange)
	}

	slog.InfoContext(ctx, "Password changed", "user_id", user.ID)
	return nil
}

// ResendVerification asks the store to resend the sign-up verification email.
// Unknown and already-verified addresses report success for the same
// anti-enumeration reason as ForgotPassword.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	if err := s.requireFeature(featuregate.FlagEmailVerification); err != nil {
		return err
	}

	email = normalizeEmail(email)
	if issues := validation.Email(email); len(issues) > 0 {
		return validationError(issues)
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		// Throttle backend trouble must not take the whole flow down.
		slog.WarnContext(ctx, "Resend limiter unavailable, allowing request", "error", err)
	} else if !allowed {
		return apperrors.RateLimited(CodeRateLimitExceeded, "Too many verification emails requested. Please wait before trying again.")
	}

	if err := s.ids.ResendVerification(ctx, email, s.redirectURL); err != nil {
		return mapResendError(err)
	}
	return nil
}

// DeleteAccount purges the user's product data, erases the account at the
// store, then invalidates the session. Erasure is scoped to the authenticated
// subject only. If erasure succeeds but sign-out fails, the operation still
// reports success: the data is already gone, and a dangling session is the
// lesser failure.
func (s *Service) DeleteAccount(ctx context.Context, accessToken, confirmation string) error {
	if err := s.requireFeature(featuregate.FlagAccountDeletion); err != nil {
		return err
	}
	if accessToken == "" {
		return apperrors.Unauthorized(CodeUnauthorized, "You must be logged in to delete your account.")
	}

	if issues := validation.Confirmation(confirmation, DeleteConfirmationPhrase); len(issues) > 0 {
		return validationError(issues)
	}

	user, err := s.ids.GetUser(ctx, accessToken)
	if err != nil {
		if isTokenRejection(err) {
			return apperrors.Unauthorized(CodeUnauthorized, "You must be logged in to delete your account.")
		}
		return apperrors.Internal(CodeDeleteError, "Could not delete your account. Please try again.", err)
	}

	if err := s.data.PurgeUserData(ctx, user.ID); err != nil {
		return apperrors.Internal(CodeDeleteError, "Could not delete your account. Please try again.", err)
	}

	if err := s.ids.AdminDeleteUser(ctx, user.ID); err != nil {
		return apperrors.Internal(CodeDeleteError, "Could not delete your account. Please try again.", err)
	}

	if err := s.ids.SignOut(ctx, accessToken); err != nil {
		slog.WarnContext(ctx, "Sign-out after account deletion failed", "user_id", user.ID, "error", err)
	}

	slog.InfoContext(ctx, "Account deleted", "user_id", user.ID)
	return nil
}

// CheckSession resolves the user behind an access token, or nil when the
// request is effectively anonymous. Token rejections are not errors here;
// only infrastructure failures are.
func (s *Service) CheckSession(ctx context.Context, accessToken string) (*domain.User, error) {
	if err := s.requireFeature(featuregate.FlagLogin); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, nil
	}

	user, err := s.ids.GetUser(ctx, accessToken)
	if err != nil {
		if isTokenRejection(err) {
			return nil, nil
		}
		return nil, apperrors.Internal(CodeAuthError, "Could not verify your session. Please try again.", err)
	}
	return user, nil
}

func (s *Service) requireFeature(flag string) error {
	if s.gate.Enabled(flag) {
		return nil
	}
	return apperrors.Unavailable(CodeFeatureDisabled, "This feature is currently unavailable.")
}

func validationError(issues []apperrors.FieldIssue) error {
	return apperrors.Validation(CodeValidation, "Please correct the highlighted fields.", issues...)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
