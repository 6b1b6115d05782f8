package wallet

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/wallet/txparse"
)

func PostPrepareSigningRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/transactions/:code/prepare", postPrepareSigningHandler(s))
}

// The raw body is the descriptor. Normalization needs no device; with a
// connected device the review goes through the wallet service.
func postPrepareSigningHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		code := strings.ToUpper(c.Param("code"))

		descriptor, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return httperrors.NewBadRequestBody(err)
		}

		var tx *txparse.Transaction
		if s.Wallet != nil {
			tx, err = s.Wallet.PrepareSigning(ctx, descriptor, code)
		} else {
			tx, err = s.Normalizer.Parse(descriptor, code)
		}
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, tx)
	}
}
