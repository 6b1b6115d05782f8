package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerConfig tunes the request logger.
type LoggerConfig struct {
	Skipper middleware.Skipper
	Level   zerolog.Level
}

var DefaultLoggerConfig = LoggerConfig{
	Skipper: middleware.DefaultSkipper,
	Level:   zerolog.DebugLevel,
}

func Logger() echo.MiddlewareFunc {
	return LoggerWithConfig(DefaultLoggerConfig)
}

// LoggerWithConfig stores a request-scoped logger carrying the request id in
// the request context and logs every completed request.
func LoggerWithConfig(config LoggerConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultLoggerConfig.Skipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}

			l := log.With().
				Str("id", id).
				Str("method", req.Method).
				Str("path", c.Path()).
				Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			l.WithLevel(config.Level).
				Int("status", res.Status).
				Dur("duration", time.Since(start)).
				Int64("bytes_out", res.Size).
				Msg("Request handled")

			return nil
		}
	}
}
