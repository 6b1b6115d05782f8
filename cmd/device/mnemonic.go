package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/util/command"
	"golang.org/x/term"
)

func newVerifyMnemonic() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-mnemonic",
		Short: "Checks a backup phrase against the seed held by the device",
		Long: `Checks a backup phrase against the seed held by the device.

The phrase is read without echo when stdin is a terminal, otherwise from the
first line of stdin. It is never logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			mnemonic, err := readMnemonic(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return command.WithDevice(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				if err := s.Wallet.VerifyMnemonic(ctx, mnemonic); err != nil {
					return err
				}

				log.Info().Msg("Mnemonic matches the device seed")
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return err
			})
		},
	}
}

func readMnemonic(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Enter mnemonic: ")

		// Read mnemonic from terminal (hides input)
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", errors.Wrap(err, "failed to read mnemonic from terminal")
		}

		_, _ = fmt.Fprintln(prompt)
		return normalizeMnemonic(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read mnemonic")
	}
	return normalizeMnemonic(line), nil
}

// normalizeMnemonic collapses whitespace between words.
func normalizeMnemonic(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
