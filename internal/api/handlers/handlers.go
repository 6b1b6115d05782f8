package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/handlers/coins"
	"github/chapool/go-coldwallet/internal/api/handlers/common"
	"github/chapool/go-coldwallet/internal/api/handlers/device"
	"github/chapool/go-coldwallet/internal/api/handlers/wallet"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = append(s.Router.Routes, []*echo.Route{
		coins.GetCoinRoute(s),
		coins.GetCoinsRoute(s),
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),
		device.GetEntropyRoute(s),
		device.GetFirmwareRoute(s),
		device.PostVerifyMnemonicRoute(s),
		wallet.GetAccountRoute(s),
		wallet.PostDeriveAddressesRoute(s),
		wallet.PostPrepareSigningRoute(s),
	}...)
}
