package probe

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/util/command"
)

func newReadiness() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks that the device answers",
		Long: `Connects to the configured device and reads its firmware version.

Exits non-zero when the device is unreachable or does not answer in time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithDevice(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				result, err := s.Readiness(ctx)
				if verbose {
					if printErr := command.PrintJSON(cmd.OutOrStdout(), result); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, verboseFlag, "v", false, "Print the check result")

	return cmd
}
