package device

import (
	"net/http"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
)

type PostVerifyMnemonicPayload struct {
	Mnemonic *string `json:"mnemonic"`
}

type PostVerifyMnemonicResponse struct {
	Verified bool `json:"verified"`
}

func PostVerifyMnemonicRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Device.POST("/mnemonic/verify", postVerifyMnemonicHandler(s))
}

// A mismatch surfaces as a device rejection (422) carrying the device code.
func postVerifyMnemonicHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Wallet == nil {
			return httperrors.ErrDeviceNotConnected
		}

		var body PostVerifyMnemonicPayload
		if err := c.Bind(&body); err != nil {
			return httperrors.NewBadRequestBody(err)
		}

		mnemonic := strings.Join(strings.Fields(swag.StringValue(body.Mnemonic)), " ")
		if mnemonic == "" {
			return httperrors.NewRequiredParam("mnemonic", "body")
		}

		if err := s.Wallet.VerifyMnemonic(c.Request().Context(), mnemonic); err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &PostVerifyMnemonicResponse{Verified: true})
	}
}
