package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/config"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/wallet"
	"github/chapool/go-coldwallet/internal/wallet/address"
	"github/chapool/go-coldwallet/internal/wallet/txparse"
)

type Router struct {
	Routes      []*echo.Route
	Root        *echo.Group
	Management  *echo.Group
	APIV1Coins  *echo.Group
	APIV1Wallet *echo.Group
	APIV1Device *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`
	// -> initialized with s.ConnectDevice(ctx)
	Transport *device.StreamTransport `wire:"-"`
	Invoker   *device.Invoker         `wire:"-"`
	Wallet    wallet.Service          `wire:"-"`
	// -> initialized with s.StartMetrics()
	MetricsHTTP *http.Server `wire:"-"`

	Config     config.Server
	Registry   *coin.Registry
	Engine     *address.Engine
	Normalizer *txparse.Normalizer
	Prometheus *prometheus.Registry
	Metrics    *device.Metrics
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	registry *coin.Registry,
	engine *address.Engine,
	normalizer *txparse.Normalizer,
	promRegistry *prometheus.Registry,
	metrics *device.Metrics,
) *Server {
	return &Server{
		Config:     cfg,
		Registry:   registry,
		Engine:     engine,
		Normalizer: normalizer,
		Prometheus: promRegistry,
		Metrics:    metrics,
	}
}

// ConnectDevice dials the configured device address, starts the read loop
// and builds the wallet service on top of the resulting invoker. Calling it
// again on a connected server is a no-op.
func (s *Server) ConnectDevice(ctx context.Context) error {
	if s.Invoker != nil {
		return nil
	}

	cfg := s.Config.Device
	transport, err := device.Dial(ctx, cfg.Address, cfg.DialTimeout, cfg.MaxFrameSize)
	if err != nil {
		return err
	}

	invoker := device.NewInvoker(transport, device.Config{
		Timeout: cfg.InvokeTimeout,
		Metrics: s.Metrics,
	})
	transport.Start(invoker)

	walletService, err := wallet.NewService(invoker, s.Registry, s.Engine, s.Normalizer)
	if err != nil {
		invoker.Close()
		_ = transport.Close()
		return errors.Wrap(err, "failed to create wallet service")
	}

	s.Transport = transport
	s.Invoker = invoker
	s.Wallet = walletService

	log.Debug().Str("address", cfg.Address).Msg("Connected to device")
	return nil
}

// Ready reports whether the device link is up.
func (s *Server) Ready() bool {
	return s.Transport != nil &&
		s.Invoker != nil &&
		s.Wallet != nil &&
		s.Transport.Err() == nil
}

// Start serves the companion API. It blocks until the echo server stops.
func (s *Server) Start() error {
	if s.Echo == nil {
		return errors.New("server routes are not initialized")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}

	return nil
}

// StartMetrics serves the prometheus registry on the configured listen
// address. It does nothing when metrics or the endpoint are disabled.
func (s *Server) StartMetrics() {
	if s.Prometheus == nil || s.Config.Metrics.ListenAddress == "" || s.MetricsHTTP != nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Prometheus, promhttp.HandlerOpts{}))

	s.MetricsHTTP = &http.Server{
		Addr:              s.Config.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("address", srv.Addr).Msg("Metrics endpoint stopped")
		}
	}(s.MetricsHTTP)
}

// Shutdown stops the companion API and the metrics endpoint, then releases
// the device link.
func (s *Server) Shutdown(ctx context.Context) []error {
	log.Debug().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, errors.Wrap(err, "failed to shut down echo server"))
		}
	}

	if s.MetricsHTTP != nil {
		if err := s.MetricsHTTP.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, errors.Wrap(err, "failed to shut down metrics endpoint"))
		}
	}

	if s.Invoker != nil {
		s.Invoker.Close()
	}

	if s.Transport != nil {
		if err := s.Transport.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close device transport"))
		}
	}

	return errs
}
