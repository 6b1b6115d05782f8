package address

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	bitcoinAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	rippleAlphabet  = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"
)

var rippleReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(bitcoinAlphabet))
	for i := range bitcoinAlphabet {
		pairs = append(pairs, bitcoinAlphabet[i:i+1], rippleAlphabet[i:i+1])
	}
	return strings.NewReplacer(pairs...)
}()

// rippleDeriver renders XRP Ledger classic addresses: a version 0 account
// id in Ripple's Base58 alphabet.
type rippleDeriver struct{}

func (rippleDeriver) Derive(xpub string, path *Path) (string, error) {
	pub, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}

	// both alphabets are positional, so the digits map one to one
	return rippleReplacer.Replace(base58.CheckEncode(hash160(pub), 0x00)), nil
}
