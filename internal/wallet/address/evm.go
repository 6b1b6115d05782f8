package address

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
)

const versionTron = 0x41

// evmDeriver renders EIP-55 checksummed Ethereum-style addresses.
type evmDeriver struct{}

func (evmDeriver) Derive(xpub string, path *Path) (string, error) {
	compressed, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}
	pub, err := ecdsaPublicKey(compressed)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// tronDeriver renders Tron addresses: the Ethereum address bytes behind a
// 0x41 prefix, Base58Check encoded.
type tronDeriver struct{}

func (tronDeriver) Derive(xpub string, path *Path) (string, error) {
	compressed, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}
	pub, err := ecdsaPublicKey(compressed)
	if err != nil {
		return "", err
	}

	return base58.CheckEncode(crypto.PubkeyToAddress(*pub).Bytes(), versionTron), nil
}
