package derive

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/util/command"
	"github/chapool/go-coldwallet/internal/wallet"
	"github/chapool/go-coldwallet/internal/wallet/address"
	"golang.org/x/sync/errgroup"
)

const (
	coinFlag   = "coin"
	xpubFlag   = "xpub"
	pathFlag   = "path"
	changeFlag = "change"
	startFlag  = "start"
	countFlag  = "count"
)

type options struct {
	coins  []string
	xpub   string
	path   string
	change uint32
	start  uint32
	count  int
}

func New() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derives addresses from an account extended public key",
		Long: `Derives addresses for one or more coins.

With --xpub the key is used as given and no device is needed. Without it the
account key of every coin is fetched from the device first.`,
		Example: `  app derive --coin LTC --xpub xpub6CKt... --count 5
  app derive --coin BTC --coin ETH --path 0/7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed(countFlag) {
				opts.count = cfg.Wallet.DefaultBatch
			}

			run := command.WithDevice
			if opts.xpub != "" {
				run = command.WithServer
			}

			return run(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				addrs, err := deriveAll(ctx, s, opts)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), addrs)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&opts.coins, coinFlag, "c", nil, "Coin code to derive for (repeatable)")
	cmd.Flags().StringVar(&opts.xpub, xpubFlag, "", "Account extended public key; skips the device")
	cmd.Flags().StringVar(&opts.path, pathFlag, "", "Single relative path change/index, overrides --change, --start and --count")
	cmd.Flags().Uint32Var(&opts.change, changeFlag, 0, "Change branch (0 receive, 1 change)")
	cmd.Flags().Uint32Var(&opts.start, startFlag, 0, "First address index")
	cmd.Flags().IntVarP(&opts.count, countFlag, "n", 0, "Number of addresses (defaults to WALLET_DEFAULT_BATCH)")
	_ = cmd.MarkFlagRequired(coinFlag)

	return cmd
}

func deriveAll(ctx context.Context, s *api.Server, opts options) ([]*wallet.Address, error) {
	if opts.path != "" {
		path, err := address.ParseRelativePath(opts.path)
		if err != nil {
			return nil, err
		}
		opts.change, opts.start, opts.count = path.Change, path.Index, 1
	}
	if opts.count <= 0 || opts.count > wallet.MaxBatch {
		return nil, errs.Newf(errs.KindInvalidKey, "derive", "count must be between 1 and %d, got %d", wallet.MaxBatch, opts.count)
	}

	var (
		mu  sync.Mutex
		out = make(map[string][]*wallet.Address, len(opts.coins))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, code := range opts.coins {
		code = strings.ToUpper(strings.TrimSpace(code))
		g.Go(func() error {
			var (
				addrs []*wallet.Address
				err   error
			)
			if opts.xpub != "" {
				addrs, err = wallet.DeriveFromXPub(s.Engine, code, opts.xpub, opts.change, opts.start, opts.count)
			} else {
				addrs, err = s.Wallet.AccountAddresses(ctx, code, opts.change, opts.start, opts.count)
			}
			if err != nil {
				return errors.Wrapf(err, "failed to derive %s addresses", code)
			}

			mu.Lock()
			out[code] = addrs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []*wallet.Address
	for _, code := range opts.coins {
		result = append(result, out[strings.ToUpper(strings.TrimSpace(code))]...)
	}

	log.Debug().Strs("coins", opts.coins).Int("addresses", len(result)).Msg("Derivation finished")
	return result, nil
}
