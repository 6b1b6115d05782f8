package httperrors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/util"
)

// StatusNotReady is returned by readiness probes while the device is down.
const StatusNotReady = 521

// Public error types.
const (
	TypeGeneric              = "generic"
	TypeInvalidRequest       = "INVALID_REQUEST"
	TypeDeviceRejected       = "DEVICE_REJECTED"
	TypeDeviceUnavailable    = "DEVICE_UNAVAILABLE"
	TypeDeviceTimeout        = "DEVICE_TIMEOUT"
	TypeProtocol             = "PROTOCOL_ERROR"
	TypeUnsupportedCoin      = "UNSUPPORTED_COIN"
	TypeMalformedTransaction = "MALFORMED_TRANSACTION"
	TypeInvalidKey           = "INVALID_KEY"
)

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Code       int                    `json:"status"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Detail     string                 `json:"detail,omitempty"`
	DeviceCode *int                   `json:"deviceCode,omitempty"`
	Validation []*HTTPValidationError `json:"validationErrors,omitempty"`
	Internal   error                  `json:"-"`
}

// HTTPValidationError names one offending request parameter.
type HTTPValidationError struct {
	Key   *string `json:"key"`
	In    *string `json:"in"`
	Error *string `json:"error"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewHTTPErrorWithDetail(code int, errorType string, title string, detail string) *HTTPError {
	return &HTTPError{
		Code:   code,
		Type:   errorType,
		Title:  title,
		Detail: detail,
	}
}

func NewHTTPValidationError(code int, errorType string, title string, validationErrors []*HTTPValidationError) *HTTPError {
	return &HTTPError{
		Code:       code,
		Type:       errorType,
		Title:      title,
		Validation: validationErrors,
	}
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	if e.Detail != "" {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	for _, v := range e.Validation {
		fmt.Fprintf(&b, " - %s", *v.Error)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}
	return b.String()
}

// FromError maps a classified failure onto its public HTTP representation.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return &HTTPError{
			Code:     echoErr.Code,
			Type:     TypeGeneric,
			Title:    http.StatusText(echoErr.Code),
			Detail:   fmt.Sprint(echoErr.Message),
			Internal: err,
		}
	}

	e := &HTTPError{Detail: err.Error(), Internal: err}

	switch errs.KindOf(err) {
	case errs.KindUnsupportedCoin:
		e.Code, e.Type, e.Title = http.StatusNotFound, TypeUnsupportedCoin, "Coin is not supported."
	case errs.KindMalformedTransaction:
		e.Code, e.Type, e.Title = http.StatusBadRequest, TypeMalformedTransaction, "Transaction descriptor is malformed."
	case errs.KindInvalidKey:
		e.Code, e.Type, e.Title = http.StatusBadRequest, TypeInvalidKey, "Key or derivation path is invalid."
	case errs.KindDeviceRejected:
		e.Code, e.Type, e.Title = http.StatusUnprocessableEntity, TypeDeviceRejected, "Device rejected the request."
		if code, ok := errs.Code(err); ok {
			e.DeviceCode = &code
		}
	case errs.KindTimeout:
		e.Code, e.Type, e.Title = http.StatusGatewayTimeout, TypeDeviceTimeout, "Device did not answer in time."
	case errs.KindTransport, errs.KindCancelled:
		e.Code, e.Type, e.Title = http.StatusServiceUnavailable, TypeDeviceUnavailable, "Device is unavailable."
	case errs.KindProtocol, errs.KindUnknownTag:
		e.Code, e.Type, e.Title = http.StatusBadGateway, TypeProtocol, "Device answered with an invalid message."
	default:
		e.Code, e.Type, e.Title = http.StatusInternalServerError, TypeGeneric, http.StatusText(http.StatusInternalServerError)
		e.Detail = ""
	}

	return e
}

// HTTPErrorHandler renders every handler error as HTTPError JSON.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	e := FromError(err)
	log := util.LogFromContext(c.Request().Context())
	if e.Code >= http.StatusInternalServerError {
		log.Warn().Err(err).Int("status", e.Code).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", e.Code).Msg("Request rejected")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(e.Code)
	} else {
		err = c.JSON(e.Code, e)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
