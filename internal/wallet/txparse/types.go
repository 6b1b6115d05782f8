// Package txparse normalizes unsigned transaction descriptors into a
// chain-agnostic, human-unit Transaction for review before signing.
package txparse

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github/chapool/go-coldwallet/internal/coin"
)

// Descriptor is the envelope handed over by the watch-only wallet.
type Descriptor struct {
	Metadata *Metadata `json:"metadata"`
}

// Metadata carries the raw transfer fields. Amount fields are chain-native
// integers and may be encoded as JSON numbers or strings.
type Metadata struct {
	From            string           `json:"from"`
	To              string           `json:"to"`
	Value           *decimal.Decimal `json:"value"`
	Fee             *decimal.Decimal `json:"fee"`
	Memo            string           `json:"memo"`
	Token           json.RawMessage  `json:"token"`
	ContractAddress string           `json:"contractAddress"`
	TokenFullName   string           `json:"tokenFullName"`
	Override        *Override        `json:"override"`

	// EVM
	GasPrice *decimal.Decimal `json:"gasPrice"`
	GasLimit *decimal.Decimal `json:"gasLimit"`

	// XRP
	DestinationTag *decimal.Decimal `json:"destinationTag"`
}

// Override describes the token actually being moved.
type Override struct {
	TokenShortName string `json:"tokenShortName"`
	Decimals       int32  `json:"decimals"`
}

// TransactionParser maps metadata of one chain family to a Transaction.
type TransactionParser interface {
	Parse(meta Metadata, c coin.Coin) (*Transaction, error)
}

// Transaction is a normalized transfer. Amounts are in human units.
type Transaction struct {
	from      string
	to        string
	amount    decimal.Decimal
	fee       decimal.Decimal
	memo      string
	isToken   bool
	tokenName string
	coinCode  string
}

func (t *Transaction) From() string { return t.from }

func (t *Transaction) To() string { return t.to }

// Fee is always denominated in the chain's native asset.
func (t *Transaction) Fee() decimal.Decimal { return t.fee }

func (t *Transaction) Memo() string { return t.memo }

func (t *Transaction) IsToken() bool { return t.isToken }

// TokenName is the display name of the moved asset; the coin code for
// native transfers.
func (t *Transaction) TokenName() string { return t.tokenName }

func (t *Transaction) CoinCode() string { return t.coinCode }

// AmountWithoutFee is the transferred value alone.
func (t *Transaction) AmountWithoutFee() decimal.Decimal { return t.amount }

// Amount is what the review screen shows. For a native transfer the fee is
// paid in the same asset and included; a token transfer pays its fee in the
// native asset, so the token amount stands alone.
func (t *Transaction) Amount() decimal.Decimal {
	if t.isToken {
		return t.AmountWithoutFee()
	}
	return t.amount.Add(t.fee)
}

type transactionJSON struct {
	CoinCode         string `json:"coinCode"`
	From             string `json:"from"`
	To               string `json:"to"`
	Amount           string `json:"amount"`
	AmountWithoutFee string `json:"amountWithoutFee"`
	Fee              string `json:"fee"`
	Memo             string `json:"memo,omitempty"`
	IsToken          bool   `json:"isToken"`
	TokenName        string `json:"tokenName"`
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		CoinCode:         t.coinCode,
		From:             t.from,
		To:               t.to,
		Amount:           t.Amount().String(),
		AmountWithoutFee: t.amount.String(),
		Fee:              t.fee.String(),
		Memo:             t.memo,
		IsToken:          t.isToken,
		TokenName:        t.tokenName,
	})
}
