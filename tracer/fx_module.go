package tracer

import (
	"context"

	"go.uber.org/fx"
)

// Logger is the logging surface the lifecycle hooks need.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *TracerClient and Tracer, and shuts the provider down
// when the application stops so buffered spans are exported.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		func(t *TracerClient) Tracer { return t },
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// LifecycleParams groups the dependencies of RegisterTracerLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Tracer    *TracerClient
	Logger    Logger `optional:"true"`
}

// RegisterTracerLifecycle flushes and stops the tracer on shutdown.
func RegisterTracerLifecycle(params LifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("Shutting down tracer", nil)
			}
			return params.Tracer.Shutdown(ctx)
		},
	})
}
