package connector

import (
	"context"

	"go.uber.org/fx"

	"github.com/nakji-network/connector-go/config"
	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/logger"
	"github.com/nakji-network/connector-go/metrics"
	"github.com/nakji-network/connector-go/schema_registry"
	"github.com/nakji-network/connector-go/tracer"
)

// FXModule assembles a connector application: logger, tracer, metrics,
// the transactional producer, the registry client and *Connector, all
// configured from *config.Config and *config.Manifest.
//
// Those two are not provided here. Add config.FXModule to load them from
// disk, or supply them directly:
//
//	app := fx.New(
//	    config.FXModule,
//	    connector.FXModule,
//	    fx.Invoke(func(c *connector.Connector) { ... }),
//	)
var FXModule = fx.Module("connector",
	logger.FXModule,
	tracer.FXModule,
	metrics.FXModule,
	kafka.FXModule,
	schema_registry.FXModule,
	fx.Provide(
		LoggerConfig,
		TracerConfig,
		MetricsConfig,
		ProducerConfig,
		RegistryConfig,
		func(l *logger.LoggerClient) Logger { return l },
		func(l *logger.LoggerClient) kafka.Logger { return l },
		func(l *logger.LoggerClient) schema_registry.Logger { return l },
		func(l *logger.LoggerClient) metrics.Logger { return l },
		func(l *logger.LoggerClient) tracer.Logger { return l },
		NewWithDI,
	),
	fx.Invoke(RegisterConnectorLifecycle),
)

// ConnectorParams groups the dependencies of a Connector.
type ConnectorParams struct {
	fx.In

	Manifest *config.Manifest
	Config   *config.Config
	Producer kafka.Publisher
	Registry schema_registry.Registrar
	Logger   Logger `optional:"true"`
}

// NewWithDI builds a Connector from injected dependencies. The producer is
// closed by the kafka module's lifecycle hook.
func NewWithDI(params ConnectorParams) *Connector {
	c := NewWithDeps(params.Manifest, params.Config, params.Producer, params.Registry)
	if params.Logger != nil {
		c.WithLogger(params.Logger)
	}
	return c
}

// RegisterConnectorLifecycle logs the connector identity on start.
func RegisterConnectorLifecycle(lc fx.Lifecycle, c *Connector) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.logInfo(ctx, "Connector started", map[string]interface{}{
				"env":      c.Env().String(),
				"manifest": c.manifest.String(),
			})
			return nil
		},
	})
}
