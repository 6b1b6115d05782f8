package txparse

import (
	"bytes"
	"encoding/json"

	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/errs"
)

// builtin maps coin codes to their chain family parser.
var builtin = map[string]TransactionParser{
	coin.BTC:  utxoParser{},
	coin.XTN:  utxoParser{},
	coin.LTC:  utxoParser{},
	coin.BCH:  utxoParser{},
	coin.DASH: utxoParser{},
	coin.XZC:  utxoParser{},
	coin.DCR:  utxoParser{},
	coin.ETH:  evmParser{},
	coin.ETC:  evmParser{},
	coin.TRON: accountParser{tokens: true},
	coin.EOS:  accountParser{tokens: true},
	coin.IOST: accountParser{tokens: true},
	coin.XRP:  xrpParser{},
}

// Normalizer parses descriptors for the coins of a registry. Coins without
// a dedicated parser use the plain account-model parser. It is immutable
// and safe for concurrent use.
type Normalizer struct {
	registry *coin.Registry
	parsers  map[string]TransactionParser
}

func NewNormalizer(reg *coin.Registry) *Normalizer {
	n := &Normalizer{
		registry: reg,
		parsers:  make(map[string]TransactionParser),
	}
	for _, c := range reg.All() {
		if p, ok := builtin[c.Code]; ok {
			n.parsers[c.Code] = p
			continue
		}
		n.parsers[c.Code] = accountParser{}
	}
	return n
}

// Parser returns the parser of code, or KindUnsupportedCoin.
//
//nolint:ireturn
func (n *Normalizer) Parser(code string) (TransactionParser, error) {
	p, ok := n.parsers[code]
	if !ok {
		return nil, errs.Newf(errs.KindUnsupportedCoin, opParse, "no transaction parser for %q", code)
	}
	return p, nil
}

// Parse decodes descriptor and normalizes it for code. On failure no
// transaction is returned.
func (n *Normalizer) Parse(descriptor []byte, code string) (*Transaction, error) {
	c, err := n.registry.Lookup(code)
	if err != nil {
		return nil, err
	}
	p, err := n.Parser(code)
	if err != nil {
		return nil, err
	}

	meta, err := DecodeDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	return p.Parse(*meta, c)
}

// DecodeDescriptor extracts the metadata block of a JSON descriptor.
func DecodeDescriptor(descriptor []byte) (*Metadata, error) {
	if len(bytes.TrimSpace(descriptor)) == 0 {
		return nil, malformed("empty descriptor")
	}

	var d Descriptor
	if err := json.Unmarshal(descriptor, &d); err != nil {
		return nil, errs.Wrap(errs.KindMalformedTransaction, opParse, err, "invalid descriptor json")
	}
	if d.Metadata == nil {
		return nil, malformed("descriptor has no metadata")
	}
	return d.Metadata, nil
}
