package wallet_test

import (
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/handlers/wallet"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/test"
	coldwallet "github/chapool/go-coldwallet/internal/wallet"
)

func TestGetAccount(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/wallet/accounts/ltc", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var account coldwallet.Account
		test.ParseResponseAndValidate(t, res, &account)
		assert.Equal(t, "LTC", account.CoinCode)
		assert.Equal(t, "m/49'/2'/0'", account.Path)
		assert.Equal(t, test.LitecoinXPub, account.XPub)

		res = test.PerformRequest(t, s, "GET", "/api/v1/wallet/accounts/LTC?account=2147483648", nil, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestGetAccountNotConnected(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	res := test.PerformRequest(t, s, "GET", "/api/v1/wallet/accounts/LTC", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, res.Result().StatusCode)
}

func TestPostDeriveAddressesFromXPub(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	payload := wallet.PostDeriveAddressesPayload{
		CoinCode: swag.String("ltc"),
		XPub:     swag.String(test.LitecoinXPub),
		Start:    swag.Int64(1),
		Count:    swag.Int64(2),
	}
	res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/addresses", payload, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)

	var response wallet.PostDeriveAddressesResponse
	test.ParseResponseAndValidate(t, res, &response)
	require.Len(t, response.Addresses, 2)
	assert.Equal(t, "3Qg4Jb6GJM2vk4eDwiyouPQRAukVa5Mbk7", response.Addresses[0].Address)
	assert.Equal(t, "0/1", response.Addresses[0].Path)
	assert.Equal(t, "3FnRAxvQm2qbAYSWoQnv2Jb1jqruYtFhMr", response.Addresses[1].Address)
}

func TestPostDeriveAddressesFromDevice(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		payload := wallet.PostDeriveAddressesPayload{
			CoinCode: swag.String("LTC"),
			Count:    swag.Int64(1),
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/addresses", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response wallet.PostDeriveAddressesResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.Len(t, response.Addresses, 1)
		assert.Equal(t, "3DYRx8E2vK8KaXA9LJ21vV4wGL4hmRYmCL", response.Addresses[0].Address)
		assert.Equal(t, "m/49'/2'/0'/0/0", response.Addresses[0].Path)
	})
}

func TestPostDeriveAddressesInvalid(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	tests := []struct {
		name    string
		payload any
		status  int
		errType string
	}{
		{
			name:    "missing coin",
			payload: wallet.PostDeriveAddressesPayload{XPub: swag.String(test.LitecoinXPub)},
			status:  http.StatusBadRequest,
			errType: httperrors.TypeInvalidRequest,
		},
		{
			name:    "bad change",
			payload: wallet.PostDeriveAddressesPayload{CoinCode: swag.String("LTC"), XPub: swag.String(test.LitecoinXPub), Change: swag.Int64(2)},
			status:  http.StatusBadRequest,
			errType: httperrors.TypeInvalidRequest,
		},
		{
			name:    "count too large",
			payload: wallet.PostDeriveAddressesPayload{CoinCode: swag.String("LTC"), XPub: swag.String(test.LitecoinXPub), Count: swag.Int64(coldwallet.MaxBatch + 1)},
			status:  http.StatusBadRequest,
			errType: httperrors.TypeInvalidRequest,
		},
		{
			name:    "unsupported coin",
			payload: wallet.PostDeriveAddressesPayload{CoinCode: swag.String("DOGE"), XPub: swag.String(test.LitecoinXPub)},
			status:  http.StatusNotFound,
			errType: httperrors.TypeUnsupportedCoin,
		},
		{
			name:    "invalid key",
			payload: wallet.PostDeriveAddressesPayload{CoinCode: swag.String("LTC"), XPub: swag.String("xpub-garbage")},
			status:  http.StatusBadRequest,
			errType: httperrors.TypeInvalidKey,
		},
		{
			name:    "broken json",
			payload: `{"coinCode":`,
			status:  http.StatusBadRequest,
			errType: httperrors.TypeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/addresses", tt.payload, nil)
			require.Equal(t, tt.status, res.Result().StatusCode)

			var httpErr httperrors.HTTPError
			test.ParseResponseAndValidate(t, res, &httpErr)
			assert.Equal(t, tt.errType, httpErr.Type)
		})
	}

	res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/addresses", wallet.PostDeriveAddressesPayload{CoinCode: swag.String("LTC")}, nil)
	require.Equal(t, http.StatusServiceUnavailable, res.Result().StatusCode, "no xpub and no device")
}

func TestPostPrepareSigning(t *testing.T) {
	descriptor := `{"metadata":{"from":"TXhtYr8nmgiSp3dY3cSfiKBjed3zN8teHS","to":"TKCsXtVqbVnYSWmS2HGdtTm4Q2fPXSbuyv","fee":100000,"value":1000000,"token":"1002000","override":{"tokenShortName":"BTT","decimals":6}}}`

	check := func(t *testing.T, s *api.Server) {
		t.Helper()

		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/transactions/tron/prepare", descriptor, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var tx map[string]any
		test.ParseResponseAndValidate(t, res, &tx)
		assert.Equal(t, "BTT", tx["tokenName"])
		assert.Equal(t, "1", tx["amount"])
		assert.Equal(t, "0.1", tx["fee"])

		res = test.PerformRequest(t, s, "POST", "/api/v1/wallet/transactions/TRON/prepare", `{"metadata":{"from":"TA"}}`, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var httpErr httperrors.HTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, httperrors.TypeMalformedTransaction, httpErr.Type)
	}

	t.Run("offline", func(t *testing.T) {
		check(t, test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0")))
	})

	t.Run("with device", func(t *testing.T) {
		test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
			check(t, s)
		})
	})
}
