package wallet

import (
	"net/http"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/util"
	"github/chapool/go-coldwallet/internal/wallet"
)

// PostDeriveAddressesPayload selects the addresses to derive. Without XPub
// the account key is fetched from the device.
type PostDeriveAddressesPayload struct {
	CoinCode *string `json:"coinCode"`
	XPub     *string `json:"xpub,omitempty"`
	Change   *int64  `json:"change,omitempty"`
	Start    *int64  `json:"start,omitempty"`
	Count    *int64  `json:"count,omitempty"`
}

type PostDeriveAddressesResponse struct {
	Addresses []*wallet.Address `json:"addresses"`
}

func PostDeriveAddressesRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/addresses", postDeriveAddressesHandler(s))
}

func postDeriveAddressesHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PostDeriveAddressesPayload
		if err := c.Bind(&body); err != nil {
			return httperrors.NewBadRequestBody(err)
		}

		code := strings.ToUpper(swag.StringValue(body.CoinCode))
		if code == "" {
			return httperrors.NewRequiredParam("coinCode", "body")
		}

		change := swag.Int64Value(body.Change)
		if change != 0 && change != 1 {
			return httperrors.NewInvalidParam("change", "body", "must be 0 or 1")
		}
		start := swag.Int64Value(body.Start)
		if start < 0 || start >= 1<<31 {
			return httperrors.NewInvalidParam("start", "body", "must be an unhardened index")
		}
		count := int64(s.Config.Wallet.DefaultBatch)
		if body.Count != nil {
			count = *body.Count
		}
		if count <= 0 || count > wallet.MaxBatch {
			return httperrors.NewInvalidParam("count", "body", "out of range")
		}

		var (
			addrs []*wallet.Address
			err   error
		)
		if xpub := swag.StringValue(body.XPub); xpub != "" {
			addrs, err = wallet.DeriveFromXPub(s.Engine, code, xpub, uint32(change), uint32(start), int(count))
		} else {
			if s.Wallet == nil {
				return httperrors.ErrDeviceNotConnected
			}
			addrs, err = s.Wallet.AccountAddresses(ctx, code, uint32(change), uint32(start), int(count))
		}
		if err != nil {
			log.Debug().Err(err).Str("coin", code).Msg("Failed to derive addresses")
			return err
		}

		return c.JSON(http.StatusOK, &PostDeriveAddressesResponse{Addresses: addrs})
	}
}
