// Package coin holds the immutable table of supported coins and the
// per-coin policy derived from it.
package coin

import (
	"fmt"
	"sync"

	"github/chapool/go-coldwallet/internal/errs"
)

// Registry is an ordered, immutable coin table. It is safe for concurrent
// use.
type Registry struct {
	coins   []Coin
	byCode  map[string]int
	byID    map[string]int
	byIndex map[uint32]int
}

// New builds a registry from coins in the given order. Codes and ids must
// be unique. When two coins share a BIP44 index, ByIndex returns the first.
func New(coins ...Coin) (*Registry, error) {
	const op = "coin.new"

	r := &Registry{
		coins:   make([]Coin, 0, len(coins)),
		byCode:  make(map[string]int, len(coins)),
		byID:    make(map[string]int, len(coins)),
		byIndex: make(map[uint32]int, len(coins)),
	}

	for _, c := range coins {
		if c.Code == "" || c.ID == "" {
			return nil, errs.Newf(errs.KindUnsupportedCoin, op, "coin %q has an empty code or id", c.Name)
		}
		if _, dup := r.byCode[c.Code]; dup {
			return nil, errs.Newf(errs.KindUnsupportedCoin, op, "duplicate coin code %q", c.Code)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, errs.Newf(errs.KindUnsupportedCoin, op, "duplicate coin id %q", c.ID)
		}
		if c.Curve == "" {
			c.Curve = CurveSecp256k1
		}

		i := len(r.coins)
		r.coins = append(r.coins, c)
		r.byCode[c.Code] = i
		r.byID[c.ID] = i
		if _, taken := r.byIndex[c.Index]; !taken {
			r.byIndex[c.Index] = i
		}
	}

	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry of the Supported coins.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := New(Supported()...)
		if err != nil {
			panic(fmt.Sprintf("invalid default coin table: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// All returns the coins in registration order.
func (r *Registry) All() []Coin {
	out := make([]Coin, len(r.coins))
	copy(out, r.coins)
	return out
}

func (r *Registry) ByCode(code string) (Coin, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return Coin{}, false
	}
	return r.coins[i], true
}

func (r *Registry) ByID(id string) (Coin, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Coin{}, false
	}
	return r.coins[i], true
}

func (r *Registry) ByIndex(index uint32) (Coin, bool) {
	i, ok := r.byIndex[index]
	if !ok {
		return Coin{}, false
	}
	return r.coins[i], true
}

// Lookup returns the coin for code or a KindUnsupportedCoin error.
func (r *Registry) Lookup(code string) (Coin, error) {
	c, ok := r.ByCode(code)
	if !ok {
		return Coin{}, errs.Newf(errs.KindUnsupportedCoin, "coin.lookup", "unknown coin code %q", code)
	}
	return c, nil
}

func (r *Registry) IsSupported(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

func (r *Registry) CoinCodeFromCoinID(id string) (string, bool) {
	c, ok := r.ByID(id)
	return c.Code, ok
}

func (r *Registry) CoinIDFromCoinCode(code string) (string, bool) {
	c, ok := r.ByCode(code)
	return c.ID, ok
}

func (r *Registry) CoinCodeOfIndex(index uint32) (string, bool) {
	c, ok := r.ByIndex(index)
	return c.Code, ok
}

func (r *Registry) CoinNameOfCoinID(id string) (string, bool) {
	c, ok := r.ByID(id)
	return c.Name, ok
}

// Curve returns the curve of code. Unknown codes report secp256k1 with ok
// set to false.
func (r *Registry) Curve(code string) (Curve, bool) {
	c, ok := r.ByCode(code)
	if !ok {
		return CurveSecp256k1, false
	}
	return c.Curve, true
}

// AccountPath returns the account derivation path of code, see AccountPath.
func (r *Registry) AccountPath(code string, account uint32) (string, error) {
	c, err := r.Lookup(code)
	if err != nil {
		return "", err
	}
	return AccountPath(c, account), nil
}
