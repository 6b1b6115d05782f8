package coins

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
)

func GetCoinRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Coins.GET("/:code", getCoinHandler(s))
}

// Looks a coin up by code, falling back to its id.
func getCoinHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Param("code")

		cn, err := s.Registry.Lookup(strings.ToUpper(key))
		if err != nil {
			byID, ok := s.Registry.ByID(key)
			if !ok {
				return err
			}
			cn = byID
		}

		return c.JSON(http.StatusOK, toCoinItem(s, cn))
	}
}
