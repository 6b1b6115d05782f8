package wallet

import (
	"context"

	"github/chapool/go-coldwallet/internal/wallet/txparse"
)

// Account is the device-held account key of one coin.
type Account struct {
	CoinCode string `json:"coinCode"`
	Path     string `json:"path"`
	XPub     string `json:"xpub"`
}

// Address is one derived receive or change address.
type Address struct {
	CoinCode string `json:"coinCode"`
	Path     string `json:"path"`
	Change   uint32 `json:"change"`
	Index    uint32 `json:"index"`
	Address  string `json:"address"`
}

// Service composes the device channel with the coin registry, the deriver
// engine and the transaction normalizer.
type Service interface {
	// Account fetches the account extended public key of code from the device
	Account(ctx context.Context, code string, account uint32) (*Account, error)

	// AccountAddresses derives count addresses of the first account starting at start
	AccountAddresses(ctx context.Context, code string, change uint32, start uint32, count int) ([]*Address, error)

	// ReceiveAddress derives the receive address at index
	ReceiveAddress(ctx context.Context, code string, index uint32) (*Address, error)

	// PrepareSigning normalizes a descriptor for review. Malformed or
	// unsupported descriptors never reach the signer.
	PrepareSigning(ctx context.Context, descriptor []byte, code string) (*txparse.Transaction, error)

	// VerifyMnemonic asks the device to confirm a backup phrase
	VerifyMnemonic(ctx context.Context, mnemonic string) error
}
