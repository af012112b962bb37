package logger

import (
	"context"
	"errors"
	"syscall"

	"go.uber.org/fx"
)

// FXModule provides *LoggerClient and Logger from a logger.Config.
//
//	app := fx.New(
//	    fx.Supply(logger.Config{Level: logger.Info, ServiceName: "nakji-ethereum"}),
//	    logger.FXModule,
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		fx.Annotate(
			func(l *LoggerClient) Logger { return l },
			fx.As(new(Logger)),
		),
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle flushes buffered entries on stop.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := client.Zap.Sync()
			// stderr can't be fsynced on most terminals
			if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
				return nil
			}
			return err
		},
	})
}
