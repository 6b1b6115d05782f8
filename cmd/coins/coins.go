package coins

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/util/command"
)

type coinInfo struct {
	coin.Coin
	AccountPath   string `json:"accountPath"`
	Derivable     bool   `json:"derivable"`
	MultiSigner   bool   `json:"multiSigner"`
	ShowPublicKey bool   `json:"showPublicKey"`
}

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "coins",
		Short: "Lists the supported coins",
		Long: `Lists the supported coins in display order as JSON, together with
the account path used to fetch their extended public key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				all := s.Registry.All()
				out := make([]coinInfo, 0, len(all))
				for _, c := range all {
					out = append(out, coinInfo{
						Coin:          c,
						AccountPath:   coin.AccountPath(c, 0),
						Derivable:     s.Engine.Supports(c.Code),
						MultiSigner:   coin.SupportsMultiSigner(c.Code),
						ShowPublicKey: coin.ShowPublicKey(c.Code),
					})
				}

				return command.PrintJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}
