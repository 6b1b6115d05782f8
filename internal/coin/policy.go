package coin

import "fmt"

// SupportsMultiSigner reports whether the coin can take part in multisig
// wallets.
func SupportsMultiSigner(code string) bool {
	switch code {
	case BTC, BCH, LTC, DASH:
		return true
	default:
		return false
	}
}

// ShowPublicKey reports whether accounts of the coin are displayed by public
// key instead of address.
func ShowPublicKey(code string) bool {
	switch code {
	case EOS, IOST:
		return true
	default:
		return false
	}
}

// PurposeNumber returns the BIP43 purpose used for the coin's account path:
// 49 (P2SH-wrapped SegWit) for BTC, XTN and LTC, 44 otherwise.
func PurposeNumber(code string) uint32 {
	switch code {
	case BTC, XTN, LTC:
		return 49
	default:
		return 44
	}
}

// AccountPath returns the hardened account path m/purpose'/index'/account'.
func AccountPath(c Coin, account uint32) string {
	return fmt.Sprintf("m/%d'/%d'/%d'", PurposeNumber(c.Code), c.Index, account)
}
