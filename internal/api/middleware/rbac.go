package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blackhole/records-system/internal/core/domain"
)

// RBAC lets the request through when the caller holds at least one of
// allowedRoles. It must run after Auth.
func RBAC(allowedRoles ...domain.RoleName) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !id.HasAnyRole(allowedRoles...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
