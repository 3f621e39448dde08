package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/ppluzka/pricehistory/internal/platform/correlation"
	apperrors "github.com/ppluzka/pricehistory/internal/platform/errors"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// errorHandlingMiddleware converts structured errors into JSON responses and
// makes sure nothing unclassified ever reaches a client verbatim.
func (s *Server) errorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Echo's own errors (e.g. 404 routing) keep their status.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structuredErr := apperrors.AsStructuredError(err)
			s.httpMetrics.ErrorsTotal.WithLabelValues(string(structuredErr.Kind)).Inc()
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()

	attrs := []any{
		"error_kind", err.Kind,
		"code", err.Code,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	switch err.Kind {
	case apperrors.KindValidation, apperrors.KindUnauthorized, apperrors.KindForbidden:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.KindConflict, apperrors.KindRateLimited, apperrors.KindUnavailable:
		slog.WarnContext(ctx, "Request refused", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Request failed", attrs...)
	}
}
