// Package address turns account-level extended public keys into
// per-coin receive and change addresses. Everything here is pure: no I/O,
// no private keys, safe for concurrent use.
package address

import "fmt"

// Path selects a child of an account key: account/change/index. Both
// components must be non-hardened.
type Path struct {
	Change uint32
	Index  uint32
}

func (p Path) String() string {
	return fmt.Sprintf("%d/%d", p.Change, p.Index)
}

// Deriver renders the address (or display public key) of one coin. A nil
// path uses the account key itself.
type Deriver interface {
	Derive(xpub string, path *Path) (string, error)
}

// DeriverFunc adapts a function to Deriver.
type DeriverFunc func(xpub string, path *Path) (string, error)

func (f DeriverFunc) Derive(xpub string, path *Path) (string, error) {
	return f(xpub, path)
}
