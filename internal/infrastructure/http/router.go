package http

import (
	"github.com/labstack/echo/v4"

	"github.com/blackhole/records-system/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes on e. They sit
// outside authentication.
func RegisterProbes(e *echo.Echo, checks ...handlers.Check) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
}
