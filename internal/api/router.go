package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/blackhole/records-system/docs"
	"github.com/blackhole/records-system/internal/api/handler"
	"github.com/blackhole/records-system/internal/api/middleware"
	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
	infrahttp "github.com/blackhole/records-system/internal/infrastructure/http"
	"github.com/blackhole/records-system/internal/infrastructure/http/handlers"
)

// Dependencies is everything NewRouter wires into the routes.
type Dependencies struct {
	Accounts ports.AccountService
	Auth     ports.AuthService
	Roles    ports.RoleService
	Records  ports.RecordService
	Audit    ports.AuditService
	Checks   []handlers.Check
	Log      zerolog.Logger

	// Metrics registry; the process-wide default registry when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Operational routes (no auth required) ---
	infrahttp.RegisterProbes(e, deps.Checks...)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Auth)
	recordHandler := handler.NewRecordHandler(deps.Records)
	adminHandler := handler.NewAdminHandler(deps.Accounts, deps.Roles, deps.Audit)
	authMiddleware := middleware.Auth(deps.Auth)

	// --- User routes ---
	users := e.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout, authMiddleware)
	users.GET("/me", authHandler.Me, authMiddleware)

	// --- Record routes ---
	criminals := e.Group("/criminals", authMiddleware)
	readers := middleware.RBAC(domain.RoleAdmin, domain.RoleReviewer)
	criminals.GET("", recordHandler.List, readers)
	criminals.GET("/search", recordHandler.Search, readers)
	criminals.POST("", recordHandler.Create, middleware.RBAC(domain.RoleAdmin))

	// --- Admin routes ---
	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/roles", adminHandler.AssignRole)
	admin.GET("/roles", adminHandler.ListRoles)
	admin.POST("/roles", adminHandler.CreateRole)
	admin.DELETE("/roles/:id", adminHandler.DeleteRole)
	admin.GET("/audit", adminHandler.Audit)

	return e
}

// requestLogger feeds echo's request log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
