package parse

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/util/command"
)

const (
	coinFlag = "coin"
	fileFlag = "file"
)

func New() *cobra.Command {
	var (
		code string
		file string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Normalizes a transaction descriptor for review",
		Long: `Reads a JSON transaction descriptor from --file or stdin and prints the
normalized transaction that would be shown before signing.`,
		Example: `  app parse --coin TRON --file transfer.json
  cat transfer.json | app parse --coin ETH`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			descriptor, err := readDescriptor(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				tx, err := s.Normalizer.Parse(descriptor, code)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), tx)
			})
		},
	}

	cmd.Flags().StringVarP(&code, coinFlag, "c", "", "Coin code of the transaction")
	cmd.Flags().StringVarP(&file, fileFlag, "f", "", "Descriptor file; stdin when empty or -")
	_ = cmd.MarkFlagRequired(coinFlag)

	return cmd
}

func readDescriptor(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read descriptor from stdin")
		}
		return b, nil
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read descriptor file %s", file)
	}
	return b, nil
}
