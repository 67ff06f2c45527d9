package http

import (
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"math"
	"net/http"
	"strings"
	"ticketsale/internal/domain/admins"
	"ticketsale/internal/idempotency"
	"ticketsale/internal/ratelimit"
)

const adminContextKey = "admin"

func loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log.FromContext(c.Request().Context()).
			WithField("path", c.Request().URL.Path).
			WithField("method", c.Request().Method).
			Info("Handling a request")

		err := next(c)

		if err != nil {
			log.FromContext(c.Request().Context()).
				WithField("error", err).
				Info("Request handling error")
		}

		return err
	}
}

func idempotencyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if key := c.Request().Header.Get(idempotency.Header); key != "" {
			ctx := idempotency.WithKey(c.Request().Context(), key)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}

// throttle answers 429 once the client IP has used up its bucket.
func throttle(t *ratelimit.IPThrottle) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryIn := t.Allow(c.RealIP())
			if !allowed {
				wait := int(math.Ceil(retryIn.Seconds()))
				c.Response().Header().Set("Retry-After", fmt.Sprint(wait))
				return &apiError{
					status:   http.StatusTooManyRequests,
					reason:   "too_many_requests",
					message:  "Too many requests from this IP, please try again later.",
					waitTime: wait,
				}
			}
			return next(c)
		}
	}
}

// requireAdmin resolves the admin of the bearer token. The admin record is read
// on every request.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return newAPIError(http.StatusUnauthorized, "token_required", "Access token required")
		}

		claims, err := s.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return &apiError{status: http.StatusUnauthorized, reason: "invalid_token", message: "Invalid or expired token", cause: err}
		}

		admin, err := s.admins.Authenticate(c.Request().Context(), claims.AdminID)
		if errors.Is(err, admins.ErrUnauthorized) {
			return &apiError{status: http.StatusUnauthorized, reason: "invalid_token", message: "Invalid token or admin inactive", cause: err}
		}
		if err != nil {
			return err
		}

		c.Set(adminContextKey, admin)
		ctx := log.ToContext(c.Request().Context(), log.FromContext(c.Request().Context()).WithField("admin_id", admin.AdminID))
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

func requirePermission(perm admins.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !currentAdmin(c).HasPermission(perm) {
				return newAPIError(http.StatusForbidden, "forbidden", fmt.Sprintf("Insufficient permissions. Required: %s", perm))
			}
			return next(c)
		}
	}
}

func requireRole(roles ...admins.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !currentAdmin(c).HasRole(roles...) {
				return newAPIError(http.StatusForbidden, "forbidden", "Insufficient role privileges")
			}
			return next(c)
		}
	}
}

func currentAdmin(c echo.Context) admins.Admin {
	admin, _ := c.Get(adminContextKey).(admins.Admin)
	return admin
}
