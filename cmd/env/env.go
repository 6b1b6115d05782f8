package env

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective configuration as TOML",
		Long: `Prints the configuration resolved from ENV, .env.local and --config
as TOML. The output can be saved and passed back through --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg); err != nil {
				return errors.Wrap(err, "failed to encode config")
			}
			return nil
		},
	}
}
