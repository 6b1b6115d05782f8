package address

import (
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/errs"
)

// builtin maps coin codes to their address strategy.
var builtin = map[string]Deriver{
	coin.BTC:  p2shSegwitDeriver{version: versionBitcoinP2SH},
	coin.XTN:  p2shSegwitDeriver{version: versionBitcoinTestnetP2SH},
	coin.LTC:  p2shSegwitDeriver{version: versionBitcoinP2SH},
	coin.BCH:  p2pkhDeriver{version: versionBitcoinP2PKH},
	coin.DASH: p2pkhDeriver{version: versionDashP2PKH},
	coin.XZC:  p2pkhDeriver{version: versionZcoinP2PKH},
	coin.ETH:  evmDeriver{},
	coin.ETC:  evmDeriver{},
	coin.TRON: tronDeriver{},
	coin.DCR:  decredDeriver{netID: decredMainnetP2PKH},
	coin.XRP:  rippleDeriver{},
	coin.EOS:  eosDeriver{},
	coin.IOST: iostDeriver{},
}

// Engine resolves coin codes to derivers. It is immutable after NewEngine
// and safe for concurrent use.
type Engine struct {
	registry *coin.Registry
	derivers map[string]Deriver
}

// NewEngine binds a deriver to every coin of reg that has one. Coins on a
// curve without an implementation stay unbound.
func NewEngine(reg *coin.Registry) *Engine {
	e := &Engine{
		registry: reg,
		derivers: make(map[string]Deriver),
	}

	for _, c := range reg.All() {
		if c.Curve == coin.CurveSecp256r1 {
			continue
		}
		if d, ok := builtin[c.Code]; ok {
			e.derivers[c.Code] = d
		}
	}

	return e
}

// Deriver returns the deriver of code, or KindUnsupportedCoin.
//
//nolint:ireturn
func (e *Engine) Deriver(code string) (Deriver, error) {
	d, ok := e.derivers[code]
	if !ok {
		return nil, errs.Newf(errs.KindUnsupportedCoin, "address.deriver", "no deriver available for %q", code)
	}
	return d, nil
}

// Supports reports whether code has a deriver.
func (e *Engine) Supports(code string) bool {
	_, ok := e.derivers[code]
	return ok
}

// Derive renders the address of code at path below the account key xpub.
func (e *Engine) Derive(code string, xpub string, path *Path) (string, error) {
	d, err := e.Deriver(code)
	if err != nil {
		return "", err
	}
	return d.Derive(xpub, path)
}

// DeriveRange renders count consecutive addresses starting at start on the
// given change branch.
func (e *Engine) DeriveRange(code string, xpub string, change uint32, start uint32, count int) ([]string, error) {
	d, err := e.Deriver(code)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errs.Newf(errs.KindInvalidKey, "address.derive_range", "negative count %d", count)
	}

	out := make([]string, 0, count)
	for i := range count {
		addr, err := d.Derive(xpub, &Path{Change: change, Index: start + uint32(i)})
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// Registry returns the coin table the engine was built from.
func (e *Engine) Registry() *coin.Registry {
	return e.registry
}
