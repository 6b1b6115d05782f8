package device

import (
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	dev "github/chapool/go-coldwallet/internal/device"
)

type GetEntropyResponse struct {
	Bits    int    `json:"bits"`
	Entropy string `json:"entropy"`
}

func GetEntropyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Device.GET("/entropy", getEntropyHandler(s))
}

func getEntropyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Invoker == nil {
			return httperrors.ErrDeviceNotConnected
		}

		bits := dev.EntropyBits256
		if raw := c.QueryParam("bits"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || (n != dev.EntropyBits128 && n != dev.EntropyBits256) {
				return httperrors.NewInvalidParam("bits", "query", "must be 128 or 256")
			}
			bits = n
		}

		entropy, err := dev.GetRandomEntropy(c.Request().Context(), s.Invoker, bits)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &GetEntropyResponse{
			Bits:    bits,
			Entropy: hex.EncodeToString(entropy),
		})
	}
}
