package test

import (
	"context"
	"testing"
	"time"

	"github/chapool/go-coldwallet/internal/api"
	"github/chapool/go-coldwallet/internal/api/router"
	"github/chapool/go-coldwallet/internal/config"
)

// WithTestServer runs closure with a server whose device link points at a
// fresh TCP emulator. The link is connected before closure runs and the
// server is shut down afterwards.
func WithTestServer(t *testing.T, closure func(s *api.Server, emu *Emulator)) {
	t.Helper()

	emu := NewEmulator()
	s := NewTestServer(t, NewTestServerConfig(emu.Listen(t)))

	if err := s.ConnectDevice(t.Context()); err != nil {
		t.Fatalf("failed to connect test server to emulator: %v", err)
	}

	closure(s, emu)
}

// NewTestServerConfig returns the env config pointed at addr with short
// timeouts and quiet logging.
func NewTestServerConfig(addr string) config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Logger.Level = "error"
	cfg.Logger.PrettyPrintConsole = false
	cfg.Device.Address = addr
	cfg.Device.DialTimeout = time.Second
	cfg.Device.InvokeTimeout = time.Second
	cfg.Metrics.Enabled = true
	cfg.Metrics.ListenAddress = ""

	return cfg
}

// NewTestServer builds a server from cfg with its routes attached, without
// connecting the device. It is shut down on test cleanup.
func NewTestServer(t *testing.T, cfg config.Server) *api.Server {
	t.Helper()

	s, err := api.InitNewServer(cfg)
	if err != nil {
		t.Fatalf("failed to create test server: %v", err)
	}

	router.Init(s)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if errs := s.Shutdown(ctx); len(errs) > 0 {
			t.Logf("failed to shut down test server: %v", errs)
		}
	})

	return s
}
