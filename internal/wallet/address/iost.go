package address

import (
	"encoding/hex"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github/chapool/go-coldwallet/internal/errs"
)

const ed25519PublicKeyLen = 32

// iostDeriver renders IOST account public keys. ed25519 has no public
// child derivation, so the device hands out the final 32-byte key (hex or
// Base58) and only a nil path is accepted.
type iostDeriver struct{}

func (iostDeriver) Derive(key string, path *Path) (string, error) {
	const op = "address.iost"

	if path != nil {
		return "", errs.Newf(errs.KindInvalidKey, op, "ed25519 keys cannot derive child %s", path)
	}

	raw, err := decodeEd25519Key(key)
	if err != nil {
		return "", err
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return "", errs.Wrap(errs.KindInvalidKey, op, err, "not a valid ed25519 public key")
	}

	return base58.Encode(raw), nil
}

func decodeEd25519Key(key string) ([]byte, error) {
	if len(key) == 2*ed25519PublicKeyLen {
		if raw, err := hex.DecodeString(key); err == nil {
			return raw, nil
		}
	}
	raw := base58.Decode(key)
	if len(raw) != ed25519PublicKeyLen {
		return nil, errs.Newf(errs.KindInvalidKey, "address.iost", "expected a %d-byte ed25519 key, got %d bytes", ed25519PublicKeyLen, len(raw))
	}
	return raw, nil
}
