package device

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	dev "github/chapool/go-coldwallet/internal/device"
)

type GetFirmwareResponse struct {
	Version string `json:"version"`
}

func GetFirmwareRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Device.GET("/firmware", getFirmwareHandler(s))
}

func getFirmwareHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Invoker == nil {
			return httperrors.ErrDeviceNotConnected
		}

		version, err := dev.GetFirmwareVersion(c.Request().Context(), s.Invoker)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &GetFirmwareResponse{Version: version})
	}
}
