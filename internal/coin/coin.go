package coin

// Curve is the elliptic curve a coin's keys live on.
type Curve string

const (
	CurveSecp256k1 Curve = "secp256k1"
	CurveEd25519   Curve = "ed25519"
	CurveSecp256r1 Curve = "secp256r1"
)

// Coin describes one supported asset.
type Coin struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Index    uint32 `json:"index"` // BIP44 coin type
	Curve    Curve  `json:"curve"`
	Decimals int32  `json:"decimals"`
}

// Coin codes of the default table.
const (
	BTC  = "BTC"
	XTN  = "XTN"
	ETC  = "ETC"
	ETH  = "ETH"
	BCH  = "BCH"
	DASH = "DASH"
	LTC  = "LTC"
	TRON = "TRON"
	DCR  = "DCR"
	XZC  = "XZC"
	XRP  = "XRP"
	IOST = "IOST"
	EOS  = "EOS"
)

// Supported returns the default coin table in display order. Every call
// returns a fresh slice.
func Supported() []Coin {
	return []Coin{
		{ID: "bitcoin", Code: BTC, Name: "Bitcoin", Index: 0, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "bitcoin_testnet", Code: XTN, Name: "Bitcoin Testnet", Index: 1, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "ethereum_classic", Code: ETC, Name: "Ethereum Classic", Index: 61, Curve: CurveSecp256k1, Decimals: 18},
		{ID: "ethereum", Code: ETH, Name: "Ethereum", Index: 60, Curve: CurveSecp256k1, Decimals: 18},
		{ID: "bitcoin_cash", Code: BCH, Name: "Bitcoin Cash", Index: 145, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "dash", Code: DASH, Name: "Dash", Index: 5, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "litecoin", Code: LTC, Name: "Litecoin", Index: 2, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "tron", Code: TRON, Name: "Tron", Index: 195, Curve: CurveSecp256k1, Decimals: 6},
		{ID: "dcr", Code: DCR, Name: "Dcr", Index: 42, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "zcoin", Code: XZC, Name: "Zcoin", Index: 136, Curve: CurveSecp256k1, Decimals: 8},
		{ID: "ripple", Code: XRP, Name: "Ripple", Index: 144, Curve: CurveSecp256k1, Decimals: 6},
		{ID: "iost", Code: IOST, Name: "IOST", Index: 291, Curve: CurveEd25519, Decimals: 8},
		{ID: "eos", Code: EOS, Name: "EOS", Index: 194, Curve: CurveSecp256k1, Decimals: 4},
	}
}
