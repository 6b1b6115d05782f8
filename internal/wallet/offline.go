package wallet

import (
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/wallet/address"
)

// DeriveFromXPub derives count addresses below a caller-supplied account key
// without touching the device. Paths are relative to the account. ed25519
// coins yield the account key only.
func DeriveFromXPub(engine *address.Engine, code string, xpub string, change uint32, start uint32, count int) ([]*Address, error) {
	if count <= 0 || count > MaxBatch {
		return nil, errs.Newf(errs.KindInvalidKey, "wallet.derive_xpub", "count must be between 1 and %d, got %d", MaxBatch, count)
	}

	if c, ok := engine.Registry().ByCode(code); ok && c.Curve == coin.CurveEd25519 {
		addr, err := engine.Derive(code, xpub, nil)
		if err != nil {
			return nil, err
		}
		return []*Address{{CoinCode: code, Address: addr}}, nil
	}

	rendered, err := engine.DeriveRange(code, xpub, change, start, count)
	if err != nil {
		return nil, err
	}

	out := make([]*Address, len(rendered))
	for i, addr := range rendered {
		path := address.Path{Change: change, Index: start + uint32(i)} //nolint:gosec // count is bounded by MaxBatch
		out[i] = &Address{
			CoinCode: code,
			Path:     path.String(),
			Change:   path.Change,
			Index:    path.Index,
			Address:  addr,
		}
	}
	return out, nil
}
