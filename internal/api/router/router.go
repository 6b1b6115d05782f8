package router

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/handlers"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/api/middleware"
)

// Init builds the echo instance, attaches the configured middlewares and
// registers every route on s.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger.SetOutput(&echoLogWriter{})

	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandler

	// ---
	// General middleware
	if s.Config.Echo.EnableRecover {
		s.Echo.Use(echoMiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestID {
		s.Echo.Use(echoMiddleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLogger {
		s.Echo.Use(middleware.Logger())
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableBodyLimit {
		s.Echo.Use(echoMiddleware.BodyLimit(s.Config.Echo.BodyLimit))
	}

	if s.Config.Echo.EnableCORS {
		s.Echo.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
			AllowOrigins: s.Config.Echo.CORSAllowOrigins,
		}))
	}

	if s.Prometheus != nil {
		s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "coldwallet",
			Subsystem:  "http",
			Registerer: s.Prometheus,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	s.Router = &api.Router{
		Routes:      nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:        s.Echo.Group(""),
		Management:  s.Echo.Group("/-"),
		APIV1Coins:  s.Echo.Group("/api/v1/coins"),
		APIV1Wallet: s.Echo.Group("/api/v1/wallet"),
		APIV1Device: s.Echo.Group("/api/v1/device"),
	}

	if s.Prometheus != nil {
		s.Router.Routes = append(s.Router.Routes,
			s.Router.Root.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
				Gatherer: s.Prometheus,
			})),
		)
	}

	handlers.AttachAllRoutes(s)
}

// echoLogWriter forwards echo's internal logger to zerolog.
type echoLogWriter struct{}

func (w *echoLogWriter) Write(p []byte) (int, error) {
	log.Debug().Str("component", "echo").Msg(string(p))
	return len(p), nil
}
