package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blackhole/records-system/internal/api/middleware"
	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// ctxIdentity extracts the caller injected by the Auth middleware and fails
// fast with 401 when it is absent, which means the route was mounted
// without Auth.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// ctxSession returns the session of the current bearer token.
func ctxSession(c echo.Context) (*ports.Session, error) {
	s, _ := c.Get(middleware.SessionKey).(*ports.Session)
	if s == nil || s.TokenID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}
