package address

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/crypto/blake256"
)

// decredMainnetP2PKH is the two-byte network id of mainnet secp256k1
// pay-to-pubkey-hash addresses ("Ds").
var decredMainnetP2PKH = [2]byte{0x07, 0x3f}

type decredDeriver struct {
	netID [2]byte
}

func (d decredDeriver) Derive(xpub string, path *Path) (string, error) {
	pub, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, 2+20+4)
	payload = append(payload, d.netID[:]...)
	payload = append(payload, blakeHash160(pub)...)

	first := blake256.Sum256(payload)
	second := blake256.Sum256(first[:])
	payload = append(payload, second[:4]...)

	return base58.Encode(payload), nil
}
