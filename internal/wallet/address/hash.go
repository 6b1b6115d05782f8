package address

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/blake256"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is mandated by the address formats
)

// hash160 is RIPEMD-160(SHA-256(b)).
func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	return ripemd(sum[:])
}

// blakeHash160 is RIPEMD-160(BLAKE-256(b)), the Decred variant.
func blakeHash160(b []byte) []byte {
	sum := blake256.Sum256(b)
	return ripemd(sum[:])
}

func ripemd(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}
