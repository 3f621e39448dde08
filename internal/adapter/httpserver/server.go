// Package httpserver is the HTTP transport of the account layer: JSON
// endpoints under /auth, health probes, and the metrics endpoint.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppluzka/pricehistory/internal/account"
	"github.com/ppluzka/pricehistory/internal/adapter/metrics"
	"github.com/ppluzka/pricehistory/internal/domain"
	"github.com/ppluzka/pricehistory/internal/identity"
	"github.com/ppluzka/pricehistory/internal/platform/config"
)

// accountService is the orchestrator surface the handlers call.
type accountService interface {
	Register(ctx context.Context, p account.RegisterParams) (string, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, accessToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, accessToken, newPassword string) error
	ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error
	ResendVerification(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context, accessToken, confirmation string) error
	CheckSession(ctx context.Context, accessToken string) (*domain.User, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	accounts accountService
	clock    clockwork.Clock

	sessionStore   *sessions.CookieStore
	authMetrics    *metrics.AuthMetrics
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

func NewServer(cfg *config.Config, accounts accountService, clock clockwork.Clock, reg *prometheus.Registry, healthChecks []HealthCheck) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		accounts:       accounts,
		clock:          clock,
		sessionStore:   setupSessionStore(cfg),
		authMetrics:    metrics.NewAuthMetrics(reg),
		httpMetrics:    metrics.NewHTTPMetrics(reg),
		metricsHandler: metrics.Handler(reg),
		healthChecks:   healthChecks,
		startTime:      clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys. The cookie session is the explicit persistence of the
// store-issued session object; no transport state is mutated implicitly.
const (
	sessionName            = "pricehistory-session"
	sessionKeyAccessToken  = "access_token"
	sessionKeyRefreshToken = "refresh_token"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}

// sessionAccessToken returns the access token from the cookie session, or ""
// when the request carries no usable session. A token whose own expiry claim
// has passed is treated as absent: the store would reject it anyway, so the
// round trip is skipped.
func (s *Server) sessionAccessToken(c echo.Context) string {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionKeyAccessToken].(string)
	if token == "" {
		return ""
	}
	if claims, err := identity.ParseSessionClaims(token); err == nil && claims.Expired(s.clock.Now()) {
		return ""
	}
	return token
}

// establishSession persists a store-issued session into the cookie jar. The
// pre-auth session is invalidated and a fresh one created so a session ID
// fixated before login cannot be reused afterwards.
func (s *Server) establishSession(c echo.Context, sess *domain.Session) error {
	old, err := s.sessionStore.Get(c.Request(), sessionName)
	if err == nil {
		old.Options.MaxAge = -1
		if err := old.Save(c.Request(), c.Response().Writer); err != nil {
			return fmt.Errorf("failed to invalidate old session: %w", err)
		}
	}

	fresh, err := s.sessionStore.New(c.Request(), sessionName)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	fresh.Values[sessionKeyAccessToken] = sess.AccessToken
	fresh.Values[sessionKeyRefreshToken] = sess.RefreshToken
	if err := fresh.Save(c.Request(), c.Response().Writer); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// clearSession drops the cookie session.
func (s *Server) clearSession(c echo.Context) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return
	}
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
}
