package probe

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/util/command"
)

func newLiveness() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks the local derivers without touching the device",
		Long: `Checks the local derivers without touching the device.

Exits non-zero when any deriver fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				results, err := s.Liveness()
				if verbose && results != nil {
					if printErr := command.PrintJSON(cmd.OutOrStdout(), results); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, verboseFlag, "v", false, "Print the result of every check")

	return cmd
}
