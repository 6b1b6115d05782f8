package address

import "github.com/btcsuite/btcd/btcutil/base58"

const eosPrefix = "EOS"

// eosDeriver renders the legacy EOS public key string. EOS accounts are
// named on chain, so the key is what the wallet displays.
type eosDeriver struct{}

func (eosDeriver) Derive(xpub string, path *Path) (string, error) {
	pub, err := childPublicKey(xpub, path)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, len(pub)+4)
	buf = append(buf, pub...)
	buf = append(buf, ripemd(pub)[:4]...)

	return eosPrefix + base58.Encode(buf), nil
}
