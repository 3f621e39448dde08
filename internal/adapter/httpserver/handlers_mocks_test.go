package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ppluzka/pricehistory/internal/account"
	"github.com/ppluzka/pricehistory/internal/domain"
	"github.com/ppluzka/pricehistory/internal/platform/config"
)

type mockAccountService struct {
	registerFunc       func(ctx context.Context, p account.RegisterParams) (string, error)
	loginFunc          func(ctx context.Context, email, password string) (*domain.Session, error)
	logoutFunc         func(ctx context.Context, accessToken string) error
	forgotPasswordFunc func(ctx context.Context, email string) error
	resetPasswordFunc  func(ctx context.Context, accessToken, newPassword string) error
	changePasswordFunc func(ctx context.Context, accessToken, currentPassword, newPassword string) error
	resendFunc         func(ctx context.Context, email string) error
	deleteAccountFunc  func(ctx context.Context, accessToken, confirmation string) error
	checkSessionFunc   func(ctx context.Context, accessToken string) (*domain.User, error)
}

func (m *mockAccountService) Register(ctx context.Context, p account.RegisterParams) (string, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, p)
	}
	return p.Email, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return &domain.Session{AccessToken: "opaque-token", RefreshToken: "refresh", UserID: "user-1", Email: email, Verified: true}, nil
}

func (m *mockAccountService) Logout(ctx context.Context, accessToken string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, accessToken)
	}
	return nil
}

func (m *mockAccountService) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFunc != nil {
		return m.forgotPasswordFunc(ctx, email)
	}
	return nil
}

func (m *mockAccountService) ResetPassword(ctx context.Context, accessToken, newPassword string) error {
	if m.resetPasswordFunc != nil {
		return m.resetPasswordFunc(ctx, accessToken, newPassword)
	}
	return nil
}

func (m *mockAccountService) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, accessToken, currentPassword, newPassword)
	}
	return nil
}

func (m *mockAccountService) ResendVerification(ctx context.Context, email string) error {
	if m.resendFunc != nil {
		return m.resendFunc(ctx, email)
	}
	return nil
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, accessToken, confirmation string) error {
	if m.deleteAccountFunc != nil {
		return m.deleteAccountFunc(ctx, accessToken, confirmation)
	}
	return nil
}

func (m *mockAccountService) CheckSession(ctx context.Context, accessToken string) (*domain.User, error) {
	if m.checkSessionFunc != nil {
		return m.checkSessionFunc(ctx, accessToken)
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "development",
		Port:              "0",
		SessionSecret:     strings.Repeat("s", 32),
		SessionMaxAge:     168 * time.Hour,
		AuthRatePerSecond: 1000,
		AuthRateBurst:     1000,
	}
}

var testStartTime = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, accounts accountService, healthChecks ...HealthCheck) (*Server, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testStartTime)
	srv, err := NewServer(testConfig(), accounts, clock, prometheus.NewRegistry(), healthChecks)
	require.NoError(t, err)
	return srv, clock
}

func doRequest(srv *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// loginCookies performs a login and returns the live session cookie it set.
// Login writes two Set-Cookie headers (the pre-auth invalidation and the fresh
// session); only the fresh one, with a positive Max-Age, is the session.
func loginCookies(t *testing.T, srv *Server) []*http.Cookie {
	t.Helper()
	rec := doRequest(srv, http.MethodPost, "/auth/login", `{"email":"user@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var session *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionName && cookie.MaxAge > 0 {
			session = cookie
		}
	}
	require.NotNil(t, session, "login must set a live session cookie")
	return []*http.Cookie{session}
}
