package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/vavastapak/account-service/docs"
	"github.com/vavastapak/account-service/internal/api/handler"
	"github.com/vavastapak/account-service/internal/api/middleware"
	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/core/ports"
)

// Dependencies is everything the router needs from the composition root.
type Dependencies struct {
	Service ports.AccountService
	// Health lists the stores pinged by the readiness probe, by name.
	Health    map[string]handler.Pinger
	JWTSecret string
	// CORSAllowOrigins defaults to "*" when empty.
	CORSAllowOrigins []string
	Log              zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
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
	origins := deps.CORSAllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Public account routes ---
	accounts := handler.NewAccountHandler(deps.Service)
	e.POST("/register", accounts.Register)
	e.POST("/login", accounts.Login)
	e.POST("/forgot-password", accounts.ForgotPassword)
	e.GET("/reset-password", accounts.CheckResetToken)
	e.POST("/reset-password", accounts.ResetPassword)

	// --- Operator routes (admin bearer token) ---
	if deps.JWTSecret != "" {
		admin := handler.NewAdminHandler(deps.Service)
		users := e.Group("/users", middleware.Auth(deps.JWTSecret), middleware.RBAC(domain.RoleAdmin))
		users.GET("", admin.ListUsers)
		users.DELETE("", admin.DeleteUsers)
		users.DELETE("/delete-all", admin.DeleteUsers)
	} else {
		deps.Log.Warn().Msg("JWT_SECRET not set, operator routes disabled")
	}

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(deps.Health, deps.Log)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
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
