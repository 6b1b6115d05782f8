package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/httperrors"
	"github/chapool/go-coldwallet/internal/config"
	"github/chapool/go-coldwallet/internal/test"
)

func TestGetReadyReadiness(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		res := test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		require.Equal(t, "Ready.", res.Body.String())
	})
}

func TestGetReadyNotConnected(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	res := test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
	require.Equal(t, httperrors.StatusNotReady, res.Result().StatusCode)
	require.Equal(t, "Not ready.", res.Body.String())
}

func TestGetReadyLinkBroken(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		// forcefully drop the device link
		require.NoError(t, s.Transport.Close())

		res := test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
		require.Equal(t, httperrors.StatusNotReady, res.Result().StatusCode)
		require.Equal(t, "Not ready.", res.Body.String())
	})
}

func TestGetHealthy(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)
	assert.Equal(t, "Healthy.", res.Body.String())

	res = test.PerformRequest(t, s, "GET", "/-/healthy?verbose=1", nil, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)

	var results []api.ProbeResult
	test.ParseResponseAndValidate(t, res, &results)
	assert.NotEmpty(t, results)
}

func TestGetVersion(t *testing.T) {
	s := test.NewTestServer(t, test.NewTestServerConfig("127.0.0.1:0"))

	res := test.PerformRequest(t, s, "GET", "/-/version", nil, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)
	assert.Equal(t, config.GetFormattedBuildArgs(), res.Body.String())
}

func TestGetMetrics(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.Emulator) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/device/firmware", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Contains(t, res.Body.String(), "coldwallet_device_exchanges_total")
		assert.Contains(t, res.Body.String(), "coldwallet_http_requests_total")
	})
}
