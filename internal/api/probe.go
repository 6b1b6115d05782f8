package api

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/wallet/address"
)

// probeXPub is the public master key of BIP32 test vector 1.
const probeXPub = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"

// ProbeResult is the outcome of one component check.
type ProbeResult struct {
	Component string `json:"component"`
	Detail    string `json:"detail,omitempty"`
	Err       string `json:"error,omitempty"`
}

// Liveness checks the local components: every derivable secp256k1 coin must
// render an address from a known key. It needs no device.
func (s *Server) Liveness() ([]ProbeResult, error) {
	var (
		results []ProbeResult
		failed  error
	)

	for _, c := range s.Registry.All() {
		if c.Curve != coin.CurveSecp256k1 || !s.Engine.Supports(c.Code) {
			continue
		}

		addr, err := s.Engine.Derive(c.Code, probeXPub, &address.Path{})
		result := ProbeResult{Component: "deriver/" + c.Code, Detail: addr}
		if err != nil {
			result.Err = err.Error()
			if failed == nil {
				failed = errors.Wrapf(err, "deriver for %s failed", c.Code)
			}
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, errs.New(errs.KindUnsupportedCoin, "probe.liveness", "no derivable coins registered")
	}

	return results, failed
}

// Readiness checks the device link by reading the firmware version. The
// server must be connected.
func (s *Server) Readiness(ctx context.Context) (ProbeResult, error) {
	result := ProbeResult{Component: "device"}

	if !s.Ready() {
		err := errs.New(errs.KindTransport, "probe.readiness", "device not connected")
		result.Err = err.Error()
		return result, err
	}

	version, err := device.GetFirmwareVersion(ctx, s.Invoker)
	if err != nil {
		result.Err = err.Error()
		return result, err
	}

	result.Detail = version
	return result, nil
}
