package device_test

import (
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/handlers/device"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/protocol"
	"github/chapool/go-coldwallet/internal/test"
)

func TestGetFirmware(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/device/firmware", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response device.GetFirmwareResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, test.FirmwareVersion, response.Version)
	})
}

func TestGetEntropy(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/device/entropy?bits=128", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response device.GetEntropyResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, 128, response.Bits)
		entropy, err := hex.DecodeString(response.Entropy)
		require.NoError(t, err)
		assert.Len(t, entropy, 16)

		res = test.PerformRequest(t, s, "GET", "/api/v1/device/entropy?bits=64", nil, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestGetEntropyDeviceProtocolError(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, emu *test.Emulator) {
		emu.Handle(protocol.MethodGetRandomEntropy, func(req *protocol.Packet) *protocol.Packet {
			return protocol.NewBuilder(req.Method()).AddBytes(protocol.TagEntropy, []byte{1}).Build()
		})

		res := test.PerformRequest(t, s, "GET", "/api/v1/device/entropy", nil, nil)
		require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)

		var httpErr httperrors.HTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, httperrors.TypeProtocol, httpErr.Type)
	})
}

func TestPostVerifyMnemonic(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/device/mnemonic/verify", device.PostVerifyMnemonicPayload{
			Mnemonic: swag.String(" " + test.Mnemonic + " "),
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response device.PostVerifyMnemonicResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.True(t, response.Verified)

		res = test.PerformRequest(t, s, "POST", "/api/v1/device/mnemonic/verify", device.PostVerifyMnemonicPayload{
			Mnemonic: swag.String("zoo zoo zoo"),
		}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, res.Result().StatusCode)

		var httpErr httperrors.HTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, httperrors.TypeDeviceRejected, httpErr.Type)
		require.NotNil(t, httpErr.DeviceCode)
		assert.Equal(t, test.StatusMnemonicWrong, *httpErr.DeviceCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/device/mnemonic/verify", device.PostVerifyMnemonicPayload{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestDeviceNotConnected(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	for _, path := range []string{"/api/v1/device/firmware", "/api/v1/device/entropy"} {
		res := test.PerformRequest(t, s, "GET", path, nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, res.Result().StatusCode, path)
	}
}
