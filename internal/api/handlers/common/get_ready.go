package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/util"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness is the device answering a firmware version request.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if _, err := s.Readiness(ctx); err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Msg("Device is not ready")
			return c.String(httperrors.StatusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
