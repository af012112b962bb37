package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/nakji-network/connector-go/observability"
)

// Logger is the logging surface the lifecycle hooks need.
// *logger.LoggerClient satisfies it.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *Metrics, MetricsCollector and an observability.Observer
// backed by the operation metrics, and runs both HTTP servers for the
// lifetime of the application.
//
//	app := fx.New(
//	    fx.Supply(metrics.Config{ServiceName: "nakji-ethereum"}),
//	    metrics.FXModule,
//	    kafka.FXModule, // picks up the Observer
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		func(m *Metrics) MetricsCollector { return m },
		func(m *Metrics) observability.Observer { return NewObserver(m) },
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle binds the configured servers on start, serves
// them in the background and shuts them down on stop. A bind failure fails
// application start and shuts down the servers already started.
func RegisterMetricsLifecycle(params LifecycleParams) {
	m, log := params.Metrics, params.Logger
	servers := []struct {
		name string
		srv  *http.Server
	}{
		{"system", m.SystemServer},
		{"application", m.ApplicationServer},
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var started []*http.Server
			for _, s := range servers {
				if s.srv == nil {
					continue
				}
				ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.srv.Addr)
				if err != nil {
					// OnStop does not run for a failed start.
					for _, srv := range started {
						_ = srv.Shutdown(ctx)
					}
					return err
				}
				started = append(started, s.srv)
				logInfo(log, "Starting metrics server", map[string]interface{}{"server": s.name, "address": ln.Addr().String()})

				go func(srv *http.Server, name string) {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logError(log, "Metrics server stopped", err, map[string]interface{}{"server": name})
					}
				}(s.srv, s.name)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, s := range servers {
				if s.srv == nil {
					continue
				}
				logInfo(log, "Shutting down metrics server", map[string]interface{}{"server": s.name})
				if err := s.srv.Shutdown(ctx); err != nil {
					logError(log, "Error shutting down metrics server", err, map[string]interface{}{"server": s.name})
				}
			}
			return nil
		},
	})
}

func logInfo(log Logger, msg string, fields map[string]interface{}) {
	if log != nil {
		log.Info(msg, nil, fields)
	}
}

func logError(log Logger, msg string, err error, fields map[string]interface{}) {
	if log != nil {
		log.Error(msg, err, fields)
	}
}
