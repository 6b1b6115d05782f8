package httperrors

import (
	"net/http"

	"github.com/go-openapi/swag"
)

var (
	ErrDeviceNotConnected = NewHTTPError(http.StatusServiceUnavailable, TypeDeviceUnavailable, "Device is not connected.")
)

// NewBadRequestBody reports a body that could not be decoded.
func NewBadRequestBody(err error) *HTTPError {
	e := NewHTTPErrorWithDetail(http.StatusBadRequest, TypeInvalidRequest, "Request body is invalid.", err.Error())
	e.Internal = err
	return e
}

// NewRequiredParam reports a missing parameter in the given location.
func NewRequiredParam(key string, in string) *HTTPError {
	return NewInvalidParam(key, in, "required")
}

// NewInvalidParam reports a parameter that failed validation.
func NewInvalidParam(key string, in string, reason string) *HTTPError {
	return NewHTTPValidationError(http.StatusBadRequest, TypeInvalidRequest, "Request parameter is invalid.", []*HTTPValidationError{
		{
			Key:   swag.String(key),
			In:    swag.String(in),
			Error: swag.String(reason),
		},
	})
}
