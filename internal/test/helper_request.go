package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github/chapool/go-coldwallet/internal/api"
)

// PerformRequest runs one request against the server's echo instance. A body
// of type []byte or string is sent as is, anything else as JSON.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(t.Context())
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseAndValidate decodes the JSON body of res into v.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(res.Result().Body).Decode(v); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
}
