package txparse

import (
	"github.com/shopspring/decimal"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/errs"
)

const opParse = "txparse.parse"

const (
	// MaxTokenDecimals bounds override.decimals.
	MaxTokenDecimals = 36
	// maxRawDigits fits any uint256 amount.
	maxRawDigits = 78
)

func malformed(format string, args ...any) error {
	return errs.Newf(errs.KindMalformedTransaction, opParse, format, args...)
}

// raw validates a chain-native integer amount.
func raw(name string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, malformed("missing %s", name)
	}
	exp := int(v.Exponent())
	if exp > maxRawDigits || exp < -maxRawDigits || v.NumDigits()+exp > maxRawDigits {
		return decimal.Zero, malformed("%s exceeds %d digits", name, maxRawDigits)
	}
	if v.IsNegative() || !v.IsInteger() {
		return decimal.Zero, malformed("%s must be a non-negative integer", name)
	}
	return *v, nil
}

func optionalRaw(name string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	return raw(name, v)
}

// transfer holds the fields every chain shares.
func transfer(meta Metadata, c coin.Coin) (*Transaction, error) {
	if meta.From == "" {
		return nil, malformed("missing from")
	}
	if meta.To == "" {
		return nil, malformed("missing to")
	}
	value, err := raw("value", meta.Value)
	if err != nil {
		return nil, err
	}
	fee, err := optionalRaw("fee", meta.Fee)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		from:      meta.From,
		to:        meta.To,
		amount:    value.Shift(-c.Decimals),
		fee:       fee.Shift(-c.Decimals),
		memo:      meta.Memo,
		tokenName: c.Code,
		coinCode:  c.Code,
	}, nil
}

// isTokenTransfer reports whether meta moves a token: a token id or
// contract address together with an override block.
func isTokenTransfer(meta Metadata) bool {
	hasToken := len(meta.Token) > 0 && string(meta.Token) != "null"
	return (hasToken || meta.ContractAddress != "") && meta.Override != nil
}

// applyToken re-denominates tx in the token of meta's override.
func applyToken(tx *Transaction, meta Metadata, c coin.Coin) error {
	if meta.Override.Decimals < 0 || meta.Override.Decimals > MaxTokenDecimals {
		return malformed("token decimals %d out of range 0..%d", meta.Override.Decimals, MaxTokenDecimals)
	}
	value, err := raw("value", meta.Value)
	if err != nil {
		return err
	}

	tx.isToken = true
	tx.amount = value.Shift(-meta.Override.Decimals)
	switch {
	case meta.Override.TokenShortName != "":
		tx.tokenName = meta.Override.TokenShortName
	case meta.TokenFullName != "":
		tx.tokenName = meta.TokenFullName
	default:
		tx.tokenName = c.Code
	}
	return nil
}

// accountParser handles account-model chains with optional token
// transfers (TRON, EOS, IOST).
type accountParser struct {
	tokens bool
}

func (p accountParser) Parse(meta Metadata, c coin.Coin) (*Transaction, error) {
	tx, err := transfer(meta, c)
	if err != nil {
		return nil, err
	}
	if p.tokens && isTokenTransfer(meta) {
		if err := applyToken(tx, meta, c); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// evmParser handles Ethereum-style chains. Without an explicit fee the
// maximum fee gasPrice * gasLimit is shown.
type evmParser struct{}

func (evmParser) Parse(meta Metadata, c coin.Coin) (*Transaction, error) {
	if meta.Fee == nil {
		gasPrice, err := raw("gasPrice", meta.GasPrice)
		if err != nil {
			return nil, err
		}
		gasLimit, err := raw("gasLimit", meta.GasLimit)
		if err != nil {
			return nil, err
		}
		fee := gasPrice.Mul(gasLimit)
		meta.Fee = &fee
	}

	return accountParser{tokens: true}.Parse(meta, c)
}

// utxoParser handles Bitcoin-family chains, which carry no tokens.
type utxoParser struct{}

func (utxoParser) Parse(meta Metadata, c coin.Coin) (*Transaction, error) {
	if isTokenTransfer(meta) {
		return nil, malformed("%s does not support token transfers", c.Code)
	}
	return transfer(meta, c)
}

// xrpParser falls back to the destination tag when no memo is given.
type xrpParser struct{}

func (xrpParser) Parse(meta Metadata, c coin.Coin) (*Transaction, error) {
	tx, err := transfer(meta, c)
	if err != nil {
		return nil, err
	}
	if tx.memo == "" && meta.DestinationTag != nil {
		tag, err := raw("destinationTag", meta.DestinationTag)
		if err != nil {
			return nil, err
		}
		tx.memo = tag.String()
	}
	return tx, nil
}
