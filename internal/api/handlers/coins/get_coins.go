package coins

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/coin"
)

// CoinItem is a registry entry with its wallet policy.
type CoinItem struct {
	coin.Coin
	AccountPath   string `json:"accountPath"`
	Derivable     bool   `json:"derivable"`
	MultiSigner   bool   `json:"multiSigner"`
	ShowPublicKey bool   `json:"showPublicKey"`
}

type GetCoinsResponse struct {
	Coins []*CoinItem `json:"coins"`
}

func GetCoinsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Coins.GET("", getCoinsHandler(s))
}

func getCoinsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		all := s.Registry.All()

		response := &GetCoinsResponse{
			Coins: make([]*CoinItem, 0, len(all)),
		}
		for _, cn := range all {
			response.Coins = append(response.Coins, toCoinItem(s, cn))
		}

		return c.JSON(http.StatusOK, response)
	}
}

func toCoinItem(s *api.Server, c coin.Coin) *CoinItem {
	return &CoinItem{
		Coin:          c,
		AccountPath:   coin.AccountPath(c, 0),
		Derivable:     s.Engine.Supports(c.Code),
		MultiSigner:   coin.SupportsMultiSigner(c.Code),
		ShowPublicKey: coin.ShowPublicKey(c.Code),
	}
}
