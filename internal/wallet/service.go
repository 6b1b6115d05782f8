package wallet

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/util"
	"github/chapool/go-coldwallet/internal/wallet/address"
	"github/chapool/go-coldwallet/internal/wallet/txparse"
	"golang.org/x/sync/errgroup"
)

// MaxBatch caps the number of addresses derived per call.
const MaxBatch = 1000

type service struct {
	device     device.Exchanger
	registry   *coin.Registry
	engine     *address.Engine
	normalizer *txparse.Normalizer
}

// NewService creates a new wallet Service
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(exchanger device.Exchanger, registry *coin.Registry, engine *address.Engine, normalizer *txparse.Normalizer) (Service, error) {
	if exchanger == nil || registry == nil || engine == nil || normalizer == nil {
		return nil, errors.New("wallet service requires a device, registry, engine and normalizer")
	}

	return &service{
		device:     exchanger,
		registry:   registry,
		engine:     engine,
		normalizer: normalizer,
	}, nil
}

// Account fetches the account extended public key of code from the device
func (s *service) Account(ctx context.Context, code string, account uint32) (*Account, error) {
	c, err := s.registry.Lookup(code)
	if err != nil {
		return nil, err
	}
	if !s.engine.Supports(code) {
		return nil, errs.Newf(errs.KindUnsupportedCoin, "wallet.account", "no deriver available for %q", code)
	}

	path := coin.AccountPath(c, account)
	xpub, err := device.GetExtendedPublicKey(ctx, s.device, path, string(c.Curve))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get extended public key for %s", code)
	}

	util.LogFromContext(ctx).Debug().Str("coin", code).Str("path", path).Msg("Fetched account key")

	return &Account{CoinCode: code, Path: path, XPub: xpub}, nil
}

// AccountAddresses derives count addresses of account 0. ed25519 coins have
// no child derivation and yield the account key only.
func (s *service) AccountAddresses(ctx context.Context, code string, change uint32, start uint32, count int) ([]*Address, error) {
	if count <= 0 || count > MaxBatch {
		return nil, errs.Newf(errs.KindInvalidKey, "wallet.addresses", "count must be between 1 and %d, got %d", MaxBatch, count)
	}

	account, err := s.Account(ctx, code, 0)
	if err != nil {
		return nil, err
	}

	c, _ := s.registry.ByCode(code)
	if c.Curve == coin.CurveEd25519 {
		addr, err := s.engine.Derive(code, account.XPub, nil)
		if err != nil {
			return nil, err
		}
		return []*Address{{CoinCode: code, Path: account.Path, Address: addr}}, nil
	}

	out := make([]*Address, count)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range count {
		path := &address.Path{Change: change, Index: start + uint32(i)}
		g.Go(func() error {
			addr, err := s.engine.Derive(code, account.XPub, path)
			if err != nil {
				return err
			}
			out[i] = &Address{
				CoinCode: code,
				Path:     fmt.Sprintf("%s/%s", account.Path, path),
				Change:   path.Change,
				Index:    path.Index,
				Address:  addr,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().Str("coin", code).Uint32("start", start).Int("count", count).Msg("Derived addresses")

	return out, nil
}

// ReceiveAddress derives the receive address at index
func (s *service) ReceiveAddress(ctx context.Context, code string, index uint32) (*Address, error) {
	addrs, err := s.AccountAddresses(ctx, code, 0, index, 1)
	if err != nil {
		return nil, err
	}
	return addrs[0], nil
}

// PrepareSigning normalizes a descriptor for review
func (s *service) PrepareSigning(ctx context.Context, descriptor []byte, code string) (*txparse.Transaction, error) {
	log := util.LogFromContext(ctx).With().Str("coin", code).Logger()

	tx, err := s.normalizer.Parse(descriptor, code)
	if err != nil {
		log.Warn().Err(err).Str("kind", errs.KindOf(err).String()).Msg("Refusing to present transaction for signing")
		return nil, err
	}

	log.Info().
		Bool("is_token", tx.IsToken()).
		Str("token", tx.TokenName()).
		Str("amount", tx.Amount().String()).
		Msg("Transaction ready for review")

	return tx, nil
}

// VerifyMnemonic asks the device to confirm a backup phrase
func (s *service) VerifyMnemonic(ctx context.Context, mnemonic string) error {
	if err := device.VerifyMnemonic(ctx, s.device, mnemonic); err != nil {
		if errs.Is(err, errs.KindDeviceRejected) {
			util.LogFromContext(ctx).Info().Msg("Device rejected mnemonic")
		}
		return err
	}
	return nil
}
