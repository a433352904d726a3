package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/api/handler"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/api/middleware"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// Dependencies are the services and adapters the HTTP layer talks to.
type Dependencies struct {
	Bookings  ports.BookingService
	Rentals   ports.RentalService
	Profiles  ports.ProfileService
	Members   ports.MemberDirectory
	Dedup     middleware.Claimer
	Checks    map[string]handler.Check
	// Stream serves the websocket feed of countdown frames.
	Stream echo.HandlerFunc

	JWTSecret string
	Log       zerolog.Logger
	// Registry collects HTTP metrics; nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "rentbot",
		Registerer: registerer,
	}))

	// --- Handlers ---
	bookings := handler.NewBookingHandler(deps.Bookings)
	rentals := handler.NewRentalHandler(deps.Rentals)
	profiles := handler.NewProfileHandler(deps.Profiles)
	members := handler.NewMemberHandler(deps.Members, deps.Log)
	health := handler.NewHealthHandler(deps.Checks, func() int { return len(deps.Rentals.Countdowns()) })

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Gateway API ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))
	gateway := middleware.RBAC(middleware.RoleGateway, middleware.RoleAdmin)
	dedup := middleware.Dedup(deps.Dedup, deps.Log)

	v1.POST("/bookings", bookings.Submit, gateway, dedup)
	v1.POST("/requests", bookings.Broadcast, gateway, dedup)
	v1.POST("/interactions", rentals.Interaction, gateway, dedup)
	v1.POST("/rentals/:id/accept", rentals.Accept, gateway, dedup)
	v1.POST("/rentals/:id/decline", rentals.Decline, gateway, dedup)
	v1.POST("/rentals/:id/end-early", rentals.EndEarly, gateway, dedup)
	v1.GET("/rentals/:id", rentals.Get, gateway)
	v1.POST("/profiles/:kind", profiles.Register, gateway, dedup)
	v1.PUT("/guilds/:guild/members", members.Replace, gateway)
	if deps.Stream != nil {
		v1.GET("/ws/countdowns/:channel", deps.Stream, gateway)
	}

	// --- Operator API ---
	v1.GET("/countdowns", rentals.Countdowns, middleware.RBAC(middleware.RoleAdmin))

	return e
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
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
