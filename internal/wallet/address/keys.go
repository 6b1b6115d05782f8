package address

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/go-coldwallet/internal/errs"
)

// childPublicKey derives the compressed secp256k1 public key at path below
// the account key xpub.
func childPublicKey(xpub string, path *Path) ([]byte, error) {
	const op = "address.derive"

	account, err := bip32.B58Deserialize(xpub)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidKey, op, err, "failed to decode extended public key")
	}
	if account.IsPrivate {
		return nil, errs.New(errs.KindInvalidKey, op, "extended private keys are not accepted")
	}
	// go-bip32 does not check that the key is on the curve
	if _, err := crypto.DecompressPubkey(account.Key); err != nil {
		return nil, errs.Wrap(errs.KindInvalidKey, op, err, "extended key does not hold a valid secp256k1 point")
	}

	if path == nil {
		return account.Key, nil
	}
	if err := path.validate(); err != nil {
		return nil, err
	}

	change, err := account.NewChildKey(path.Change)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidKey, op, errors.Wrapf(err, "failed to derive change %d", path.Change), "derivation failed")
	}
	child, err := change.NewChildKey(path.Index)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidKey, op, errors.Wrapf(err, "failed to derive index %d", path.Index), "derivation failed")
	}

	return child.Key, nil
}

// ecdsaPublicKey parses a compressed key into its curve point.
func ecdsaPublicKey(compressed []byte) (*ecdsa.PublicKey, error) {
	pub, err := crypto.DecompressPubkey(compressed)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidKey, "address.derive", err, "invalid secp256k1 public key")
	}
	return pub, nil
}
