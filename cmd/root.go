package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/cmd/coins"
	"github/chapool/go-coldwallet/cmd/derive"
	"github/chapool/go-coldwallet/cmd/device"
	"github/chapool/go-coldwallet/cmd/env"
	"github/chapool/go-coldwallet/cmd/parse"
	"github/chapool/go-coldwallet/cmd/probe"
	"github/chapool/go-coldwallet/cmd/server"
	"github/chapool/go-coldwallet/internal/config"
	"github/chapool/go-coldwallet/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Version: config.GetFormattedBuildArgs(),
		Use:     "app",
		Short:   config.ModuleName,
		Long: fmt.Sprintf(`%v

Companion core for a cold-storage hardware wallet: talks to the secure
element over a framed TLV channel, derives watch-only addresses from
account public keys and normalizes transactions for review before signing.
Requires configuration through ENV or --config.`, config.ModuleName),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(command.ConfigFlag, "", "Path to a TOML config file overlaid on ENV")

	cmd.AddCommand(
		coins.New(),
		derive.New(),
		device.New(),
		env.New(),
		parse.New(),
		probe.New(),
		server.New(),
	)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
