//go:build wireinject

package api

import (
	"github.com/google/wire"
	"github/chapool/go-coldwallet/internal/config"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewRegistry,
	NewEngine,
	NewNormalizer,
	NewPrometheusRegistry,
	NewMetrics,
)

// InitNewServer returns a new Server instance. The device link is not part
// of the graph; call ConnectDevice on the result.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
