package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/util"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Liveness of the local derivers. The device is not touched.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		results, err := s.Liveness()
		if err != nil {
			util.LogFromContext(c.Request().Context()).Warn().Err(err).Msg("Health check failed")
			return c.JSON(http.StatusServiceUnavailable, results)
		}

		if c.QueryParam("verbose") == "" {
			return c.String(http.StatusOK, "Healthy.")
		}
		return c.JSON(http.StatusOK, results)
	}
}
