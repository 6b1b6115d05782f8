// Package errs classifies failures crossing the core's boundaries (codec,
// invoker, deriver, normalizer) so callers can branch on what went wrong
// instead of guessing from an empty value.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindProtocol
	KindTransport
	KindTimeout
	KindDeviceRejected
	KindUnsupportedCoin
	KindMalformedTransaction
	KindUnknownTag
	KindCancelled
	KindInvalidKey
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindProtocol:             "protocol",
	KindTransport:            "transport",
	KindTimeout:              "timeout",
	KindDeviceRejected:       "device_rejected",
	KindUnsupportedCoin:      "unsupported_coin",
	KindMalformedTransaction: "malformed_transaction",
	KindUnknownTag:           "unknown_tag",
	KindCancelled:            "cancelled",
	KindInvalidKey:           "invalid_key",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. Code carries the device status code for
// KindDeviceRejected and is zero otherwise.
type Error struct {
	Kind Kind
	Code int
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Kind == KindDeviceRejected {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinel comparisons like
// errors.Is(err, errs.ErrTimeout) work regardless of message or op.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrProtocol             = &Error{Kind: KindProtocol, Msg: "protocol error"}
	ErrTransport            = &Error{Kind: KindTransport, Msg: "transport error"}
	ErrTimeout              = &Error{Kind: KindTimeout, Msg: "timed out"}
	ErrDeviceRejected       = &Error{Kind: KindDeviceRejected, Msg: "device rejected request"}
	ErrUnsupportedCoin      = &Error{Kind: KindUnsupportedCoin, Msg: "unsupported coin"}
	ErrMalformedTransaction = &Error{Kind: KindMalformedTransaction, Msg: "malformed transaction"}
	ErrUnknownTag           = &Error{Kind: KindUnknownTag, Msg: "unknown tag"}
	ErrCancelled            = &Error{Kind: KindCancelled, Msg: "cancelled"}
	ErrInvalidKey           = &Error{Kind: KindInvalidKey, Msg: "invalid key"}
)

// New creates a classified error.
func New(kind Kind, op string, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Rejected builds a KindDeviceRejected error carrying the device's status
// code and reason verbatim.
func Rejected(op string, code int, reason string) *Error {
	if reason == "" {
		reason = "device rejected request"
	}
	return &Error{Kind: KindDeviceRejected, Op: op, Code: code, Msg: reason}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Code returns the device status code of a KindDeviceRejected error.
func Code(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindDeviceRejected {
		return e.Code, true
	}
	return 0, false
}

// IsRetryable reports whether the failure is transient from the caller's
// point of view. Device rejections and malformed input never are.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindTransport:
		return true
	default:
		return false
	}
}
