package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"identity-service/internal/model"
	"identity-service/internal/store"
	"identity-service/pkg/logger"
)

// TenantHeader carries the tenant id on inbound requests.
const TenantHeader = "X-Tenant-ID"

const tenantContextKey = "tenant"

// ResolveTenant loads the tenant named by the X-Tenant-ID header from
// the directory and stores it in the request context. Requests without a
// resolvable tenant are rejected before any token or seeding logic runs.
func ResolveTenant(dir store.Directory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			tenantID := c.Request().Header.Get(TenantHeader)
			if tenantID == "" {
				log.Error("Missing tenant header")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant header is required"})
			}

			tenant, err := dir.GetTenant(c.Request().Context(), tenantID)
			if err != nil {
				log.Error("Unknown tenant", zap.String("tenant_id", tenantID), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown tenant"})
			}

			c.Set(tenantContextKey, tenant)
			return next(c)
		}
	}
}

// TenantFromContext returns the tenant resolved for this request, or nil.
func TenantFromContext(c echo.Context) *model.Tenant {
	tenant, _ := c.Get(tenantContextKey).(*model.Tenant)
	return tenant
}
