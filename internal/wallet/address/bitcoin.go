package address

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github/chapool/go-coldwallet/internal/errs"
)

// Base58Check version bytes.
const (
	versionBitcoinP2PKH        = 0x00
	versionBitcoinP2SH         = 0x05
	versionBitcoinTestnetP2SH  = 0xc4
	versionDashP2PKH           = 0x4c
	versionZcoinP2PKH          = 0x52
	witnessV0KeyHashScriptSize = 22
)

// p2shSegwitDeriver renders P2SH-wrapped P2WPKH addresses (BIP49).
type p2shSegwitDeriver struct {
	version byte
}

func (d p2shSegwitDeriver) Derive(xpub string, path *Path) (string, error) {
	pub, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}

	// redeem script: OP_0 <20-byte key hash>
	script := make([]byte, 0, witnessV0KeyHashScriptSize)
	script = append(script, 0x00, 0x14)
	script = append(script, hash160(pub)...)

	return base58.CheckEncode(hash160(script), d.version), nil
}

// p2pkhDeriver renders legacy pay-to-pubkey-hash addresses.
type p2pkhDeriver struct {
	version byte
}

func (d p2pkhDeriver) Derive(xpub string, path *Path) (string, error) {
	pub, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}
	return base58.CheckEncode(hash160(pub), d.version), nil
}

type segwitDeriver struct {
	hrp string
}

// NewSegwitDeriver returns a Deriver producing native SegWit v0 (bech32)
// addresses with the given human readable part, e.g. "bc" or "ltc".
//
//nolint:ireturn
func NewSegwitDeriver(hrp string) Deriver {
	return segwitDeriver{hrp: hrp}
}

func (d segwitDeriver) Derive(xpub string, path *Path) (string, error) {
	pub, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}

	program, err := bech32.ConvertBits(hash160(pub), 8, 5, true)
	if err != nil {
		return "", errs.Wrap(errs.KindInvalidKey, "address.segwit", err, "failed to convert witness program")
	}
	addr, err := bech32.Encode(d.hrp, append([]byte{0x00}, program...))
	if err != nil {
		return "", errs.Wrap(errs.KindInvalidKey, "address.segwit", err, "failed to encode bech32 address")
	}
	return addr, nil
}
