package device

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	dev "github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/util/command"
)

func newVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the firmware version of the secure element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithDevice(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				version, err := dev.GetFirmwareVersion(ctx, s.Invoker)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), version)
				return err
			})
		},
	}
}

func newEntropy() *cobra.Command {
	var bits int

	cmd := &cobra.Command{
		Use:   "entropy",
		Short: "Prints fresh entropy from the secure element as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithDevice(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				entropy, err := dev.GetRandomEntropy(ctx, s.Invoker, bits)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(entropy))
				return err
			})
		},
	}

	cmd.Flags().IntVar(&bits, bitsFlag, dev.EntropyBits256, "Entropy size in bits (128 or 256)")

	return cmd
}

func newXPub() *cobra.Command {
	var (
		code    string
		account uint32
	)

	cmd := &cobra.Command{
		Use:   "xpub",
		Short: "Prints the account extended public key of a coin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithDevice(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				acc, err := s.Wallet.Account(ctx, code, account)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), acc)
			})
		},
	}

	cmd.Flags().StringVarP(&code, coinFlag, "c", "", "Coin code")
	cmd.Flags().Uint32Var(&account, accountFlag, 0, "Account number")
	_ = cmd.MarkFlagRequired(coinFlag)

	return cmd
}

func newAddress() *cobra.Command {
	var (
		code  string
		index uint32
	)

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Prints the receive address at an index of the first account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return command.WithDevice(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				addr, err := s.Wallet.ReceiveAddress(ctx, code, index)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), addr)
			})
		},
	}

	cmd.Flags().StringVarP(&code, coinFlag, "c", "", "Coin code")
	cmd.Flags().Uint32Var(&index, indexFlag, 0, "Address index")
	_ = cmd.MarkFlagRequired(coinFlag)

	return cmd
}
