package schema_registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/nakji-network/connector-go/observability"
)

// FXModule is an fx.Module that provides the registry client.
//
// The module provides:
//  1. *Client (concrete type) for direct use
//  2. Registrar interface for dependency injection
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Supply(schema_registry.Config{Host: "http://protoregistry:8080"}),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
		func(c *Client) Registrar { return c },
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a registry client
type SchemaRegistryParams struct {
	fx.In

	Config   Config
	Resolver DescriptorResolver     `optional:"true"`
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a registry client from injected dependencies.
// A provided DescriptorResolver takes precedence over Config.Resolver.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}

	if params.Resolver != nil {
		client.WithResolver(params.Resolver)
	}
	if params.Logger != nil {
		client.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}

// RegisterSchemaRegistryLifecycle logs the configured registry host on start.
// The HTTP client holds no resources that need closing.
func RegisterSchemaRegistryLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			client.logInfo(ctx, "Schema registry client initialized", map[string]interface{}{
				"host": client.host,
			})
			return nil
		},
	})
}
