package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/config"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/wallet/address"
	"github/chapool/go-coldwallet/internal/wallet/txparse"
)

// PROVIDERS - https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewRegistry returns the built-in coin table.
func NewRegistry() *coin.Registry {
	return coin.Default()
}

func NewEngine(registry *coin.Registry) *address.Engine {
	return address.NewEngine(registry)
}

func NewNormalizer(registry *coin.Registry) *txparse.Normalizer {
	return txparse.NewNormalizer(registry)
}

// NewPrometheusRegistry returns a private registry when metrics are enabled,
// nil otherwise. A private registry keeps parallel servers (tests) from
// colliding on the default one.
func NewPrometheusRegistry(cfg config.Server) *prometheus.Registry {
	if !cfg.Metrics.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics registers the device exchange metrics. Without a registry the
// invoker runs uninstrumented.
func NewMetrics(reg *prometheus.Registry) (*device.Metrics, error) {
	if reg == nil {
		return nil, nil //nolint:nilnil // metrics disabled
	}
	return device.NewMetrics(reg)
}
