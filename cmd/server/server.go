package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/router"
	"github/chapool/go-coldwallet/internal/config"
	"github/chapool/go-coldwallet/internal/util/command"
)

const (
	requireDeviceFlag string = "require-device"
	shutdownTimeout          = 10 * time.Second
)

type Flags struct {
	RequireDevice bool
}

func New() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the local companion API",
		Long: `Starts the local companion API.

The device link is opened at startup. Without --require-device a missing
device only makes /-/ready fail; offline routes keep working.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			return runServer(cmd.Context(), cfg, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.RequireDevice, requireDeviceFlag, false, "Exit when the device cannot be reached at startup")

	return cmd
}

func runServer(ctx context.Context, cfg config.Server, flags Flags) error {
	command.SetupLogger(cfg.Logger)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}

	if err := s.ConnectDevice(ctx); err != nil {
		if flags.RequireDevice {
			return err
		}
		log.Error().Err(err).Str("address", cfg.Device.Address).Msg("Device unavailable, serving offline routes only")
	}

	router.Init(s)

	go func() {
		if err := s.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Str("address", cfg.Echo.ListenAddress).Msg("Companion API started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
	}

	log.Info().Msg("Server shut down")
	return nil
}
