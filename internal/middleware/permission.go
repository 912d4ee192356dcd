package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"identity-service/internal/authz"
	"identity-service/pkg/logger"
	"identity-service/prometheus"
)

// RequirePermission gates a route on the named policy. The decision is
// made purely from the claim set stored by the auth middleware.
func RequirePermission(registry *authz.Registry, permissionName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			claims := ClaimsFromContext(c)
			if !registry.Evaluate(claims, permissionName) {
				log.Warn("Permission denied", zap.String("permission", permissionName))
				prometheus.RecordAuthError("permission_denied")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
			}

			return next(c)
		}
	}
}
