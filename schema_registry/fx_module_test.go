package schema_registry

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/logger"
	"github.com/nakji-network/connector-go/observability"
)

func TestFXModule(t *testing.T) {
	srv := newRegistryServer(t, http.StatusOK, "")
	core, logs := observer.New(zap.InfoLevel)
	obs := &recordingObserver{}
	var registrar Registrar

	app := fxtest.New(t,
		fx.Supply(Config{Host: srv.URL, Resolver: ResolverRegistry}),
		fx.Provide(
			func() Logger { return logger.NewFromZap(zap.New(core), false) },
			func() observability.Observer { return obs },
		),
		FXModule,
		fx.Populate(&registrar),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, registrar.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd)))
	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Contains(t, obs.operations(), "register")

	started := logs.FilterMessage("Schema registry client initialized").All()
	require.Len(t, started, 1)
	assert.Equal(t, srv.URL, started[0].ContextMap()["host"])
}

func TestFXModule_InjectedResolver(t *testing.T) {
	srv := newRegistryServer(t, http.StatusOK, "")
	resolver := &countingResolver{}
	var client *Client

	app := fxtest.New(t,
		fx.Supply(Config{Host: srv.URL}),
		fx.Provide(func() DescriptorResolver { return resolver }),
		FXModule,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, client.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd)))
	assert.Equal(t, int32(2), resolver.calls.Load())
}

func TestFXModule_InvalidConfig(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(Config{Resolver: "buf"}),
		FXModule,
		fx.Invoke(func(Registrar) {}),
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), `unknown resolver "buf"`)
}
