package wallet

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
)

func GetAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/accounts/:code", getAccountHandler(s))
}

func getAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Wallet == nil {
			return httperrors.ErrDeviceNotConnected
		}

		var account uint32
		if raw := c.QueryParam("account"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 31)
			if err != nil {
				return httperrors.NewInvalidParam("account", "query", "must be an unhardened account number")
			}
			account = uint32(n)
		}

		acc, err := s.Wallet.Account(c.Request().Context(), strings.ToUpper(c.Param("code")), account)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, acc)
	}
}
