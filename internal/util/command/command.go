package command

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/config"
)

const shutdownTimeout = 5 * time.Second

// NewSubcommandGroup returns a command that only groups subs.
func NewSubcommandGroup(name string, subs ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Subcommands for " + name,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subs...)

	return cmd
}

// SetupLogger applies the logger config globally. Output goes to stderr so
// stdout stays free for command results.
func SetupLogger(cfg config.LoggerServer) {
	// Every event reads the format, so only write it once.
	if zerolog.TimeFieldFormat != time.RFC3339Nano {
		zerolog.TimeFieldFormat = time.RFC3339Nano
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.PrettyPrintConsole {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("app", config.ModuleName).Logger()
		return
	}

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// WithServer sets up logging, builds a server from cfg and runs f with it.
// The server is shut down when f returns; f's error is returned unchanged.
func WithServer(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	SetupLogger(cfg.Logger)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		for _, err := range s.Shutdown(shutdownCtx) {
			log.Error().Err(err).Msg("Failed to shut down server component")
		}
	}()

	s.StartMetrics()

	return f(ctx, s)
}

// WithDevice is WithServer with the device link connected before f runs.
func WithDevice(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	return WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
		if err := s.ConnectDevice(ctx); err != nil {
			return err
		}
		return f(ctx, s)
	})
}
