package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ppluzka/pricehistory/internal/account"
)

// Generic success messages. The forgot-password and resend-verification
// bodies are identical whether or not the address is registered; the shape
// must never hint at account existence.
const (
	msgResetEmailSent   = "If an account exists for this address, a password reset email has been sent."
	msgVerificationSent = "If an account exists for this address, a verification email has been sent."
)

func (s *Server) registerAuthRoutes(rateLimiter echo.MiddlewareFunc) {
	auth := s.echo.Group("/auth", rateLimiter)

	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)
	auth.POST("/logout", s.handleLogout)
	auth.POST("/forgot-password", s.handleForgotPassword)
	auth.POST("/reset-password", s.handleResetPassword)
	auth.POST("/change-password", s.handleChangePassword)
	auth.POST("/resend-verification", s.handleResendVerification)
	auth.POST("/delete-account", s.handleDeleteAccount)
	auth.GET("/check", s.handleCheck)
}

// bindJSON decodes the request body into v. Malformed bodies are treated as
// empty ones: the zero request then fails ordinary field validation instead
// of producing a parse error.
func bindJSON(c echo.Context, v any) {
	if err := c.Bind(v); err != nil {
		slog.DebugContext(c.Request().Context(), "Ignoring malformed request body", "error", err)
	}
}

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	bindJSON(c, &req)

	email, err := s.accounts.Register(c.Request().Context(), account.RegisterParams{
		Email:        req.Email,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
	})
	s.authMetrics.Observe("register", err)
	if err != nil {
		return err
	}

	return jsonResponse(c, http.StatusCreated, map[string]string{
		"message": "Registration successful. Check your inbox to verify your email address.",
		"email":   email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	bindJSON(c, &req)

	session, err := s.accounts.Login(c.Request().Context(), req.Email, req.Password)
	s.authMetrics.Observe("login", err)
	if err != nil {
		return err
	}

	if err := s.establishSession(c, session); err != nil {
		return err
	}

	return jsonResponse(c, http.StatusOK, map[string]any{
		"message": "Logged in.",
		"user": map[string]string{
			"id":    session.UserID,
			"email": session.Email,
		},
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	err := s.accounts.Logout(c.Request().Context(), s.sessionAccessToken(c))
	s.authMetrics.Observe("logout", err)
	if err != nil {
		return err
	}

	s.clearSession(c)
	return jsonResponse(c, http.StatusOK, map[string]string{"message": "Logged out."})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword(c echo.Context) error {
	var req emailRequest
	bindJSON(c, &req)

	err := s.accounts.ForgotPassword(c.Request().Context(), req.Email)
	s.authMetrics.Observe("forgot_password", err)
	if err != nil {
		return err
	}

	return jsonResponse(c, http.StatusOK, map[string]string{"message": msgResetEmailSent})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	bindJSON(c, &req)

	err := s.accounts.ResetPassword(c.Request().Context(), s.sessionAccessToken(c), req.Password)
	s.authMetrics.Observe("reset_password", err)
	if err != nil {
		return err
	}

	return jsonResponse(c, http.StatusOK, map[string]string{"message": "Your password has been updated."})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(c echo.Context) error {
	var req changePasswordRequest
	bindJSON(c, &req)

	err := s.accounts.ChangePassword(c.Request().Context(), s.sessionAccessToken(c), req.CurrentPassword, req.NewPassword)
	s.authMetrics.Observe("change_password", err)
	if err != nil {
		return err
	}

	return jsonResponse(c, http.StatusOK, map[string]string{"message": "Your password has been changed."})
}

func (s *Server) handleResendVerification(c echo.Context) error {
	var req emailRequest
	bindJSON(c, &req)

	err := s.accounts.ResendVerification(c.Request().Context(), req.Email)
	s.authMetrics.Observe("resend_verification", err)
	if err != nil {
		return err
	}

	return jsonResponse(c, http.StatusOK, map[string]string{"message": msgVerificationSent})
}

type deleteAccountRequest struct {
	Confirmation string `json:"confirmation"`
}

func (s *Server) handleDeleteAccount(c echo.Context) error {
	var req deleteAccountRequest
	bindJSON(c, &req)

	err := s.accounts.DeleteAccount(c.Request().Context(), s.sessionAccessToken(c), req.Confirmation)
	s.authMetrics.Observe("delete_account", err)
	if err != nil {
		return err
	}

	s.clearSession(c)
	return jsonResponse(c, http.StatusOK, map[string]string{"message": "Your account has been deleted."})
}

func (s *Server) handleCheck(c echo.Context) error {
	user, err := s.accounts.CheckSession(c.Request().Context(), s.sessionAccessToken(c))
	if err != nil {
		return err
	}

	response := map[string]any{
		"authenticated": user != nil,
		"user":          nil,
		"timestamp":     s.clock.Now().UTC().Format(time.RFC3339),
	}
	if user != nil {
		response["user"] = map[string]any{
			"id":       user.ID,
			"email":    user.Email,
			"verified": user.Verified,
		}
	}
	return jsonResponse(c, http.StatusOK, response)
}

func jsonResponse(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
