package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/ppluzka/pricehistory/internal/domain"
)

// httpCallTimeout bounds every credential-store call; the store is the only
// suspension point in a request and must not hang past this.
const httpCallTimeout = 10 * time.Second

// SignUpParams carries the registration inputs forwarded to the store.
type SignUpParams struct {
	Email        string
	Password     string
	CaptchaToken string
	RedirectTo   string
}

// Client talks to the GoTrue-compatible credential store over HTTP. All calls
// run through one circuit breaker: when the store is down we fail fast rather
// than queue up requests. There is no retry here; a repeated call could cause
// duplicate side effects like double verification emails.
type Client struct {
	baseURL        string
	apiKey         string
	serviceRoleKey string
	httpClient     *http.Client
	breaker        *gobreaker.CircuitBreaker
	clock          clockwork.Clock
}

// NewClient creates a credential-store client. serviceRoleKey is only used
// for the admin account-erasure endpoint.
func NewClient(baseURL, apiKey, serviceRoleKey string, clock clockwork.Clock) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		httpClient:     &http.Client{Timeout: httpCallTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "auth-api",
			Timeout: 30 * time.Second,
		}),
		clock: clock,
	}
}

// userPayload is the store's user representation.
type userPayload struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	EmailConfirmedAt *string `json:"email_confirmed_at"`
}

func (u *userPayload) toDomain() *domain.User {
	return &domain.User{
		ID:       u.ID,
		Email:    u.Email,
		Verified: u.EmailConfirmedAt != nil && *u.EmailConfirmedAt != "",
	}
}

// SignUp creates credentials at the store. The store sends the verification
// email itself, redirecting to redirectTo after the link is consumed.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*domain.User, error) {
	body := map[string]any{
		"email":    p.Email,
		"password": p.Password,
	}
	if p.CaptchaToken != "" {
		body["gotrue_meta_security"] = map[string]string{"captcha_token": p.CaptchaToken}
	}

	query := url.Values{}
	if p.RedirectTo != "" {
		query.Set("redirect_to", p.RedirectTo)
	}

	var user userPayload
	if err := c.do(ctx, http.MethodPost, "/signup", query, body, c.apiKey, &user); err != nil {
		return nil, err
	}
	return user.toDomain(), nil
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         userPayload `json:"user"`
}

// SignInWithPassword authenticates credentials and returns the session the
// store issued. The caller decides where the session is persisted.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	query := url.Values{}
	query.Set("grant_type", "password")

	var token tokenResponse
	if err := c.do(ctx, http.MethodPost, "/token", query, body, c.apiKey, &token); err != nil {
		return nil, err
	}

	user := token.User.toDomain()
	session := &domain.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       user.ID,
		Email:        user.Email,
		Verified:     user.Verified,
	}
	if token.ExpiresIn > 0 {
		session.ExpiresAt = c.clock.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return session, nil
}

// SignOut invalidates the session behind the access token at the store.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, accessToken, nil)
}

// GetUser fetches the current user from the store. This is the strong session
// check: it validates the token against the authority rather than trusting
// anything cached locally, and is used for every security decision.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	var user userPayload
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, accessToken, &user); err != nil {
		return nil, err
	}
	return user.toDomain(), nil
}

// UpdatePassword sets a new password for the user behind the access token.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	body := map[string]string{"password": newPassword}
	return c.do(ctx, http.MethodPut, "/user", nil, body, accessToken, nil)
}

// RequestPasswordReset asks the store to dispatch a reset email. The store's
// response does not reveal whether the address is registered.
func (c *Client) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}

	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, http.MethodPost, "/recover", query, body, c.apiKey, nil)
}

// ResendVerification asks the store to resend the sign-up verification email.
func (c *Client) ResendVerification(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{
		"type":  "signup",
		"email": email,
	}

	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, http.MethodPost, "/resend", query, body, c.apiKey, nil)
}

// AdminDeleteUser erases the account at the store. Requires the service-role
// key; the caller is responsible for scoping userID to the authenticated
// subject. The id must be a well-formed UUID so a mangled value can never
// reshape the admin URL.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return c.do(ctx, http.MethodDelete, "/admin/users/"+userID, nil, nil, c.serviceRoleKey, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, bearer string, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode auth api request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create auth api request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	result, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("auth api request failed: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			// Server-side failures trip the breaker; client errors do not.
			defer func() { _ = resp.Body.Close() }()
			return nil, decodeAPIError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return err
	}

	resp := result.(*http.Response)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode auth api response: %w", err)
	}
	return nil
}

// decodeAPIError tolerates the several error body shapes the store has used
// over time: {msg}, {message}, {error_description}, {error}.
func decodeAPIError(resp *http.Response) *APIError {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorCode        string `json:"error_code"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)

	message := payload.Msg
	for _, candidate := range []string{payload.Message, payload.ErrorDescription, payload.Error} {
		if message == "" {
			message = candidate
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		Status:  resp.StatusCode,
		Code:    payload.ErrorCode,
		Message: message,
	}
}
