package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/nakji-network/connector-go/observability"
	"github.com/nakji-network/connector-go/tracer"
)

// FXModule provides *TransactionalProducer and Publisher.
//
//	app := fx.New(
//	    fx.Supply(kafka.Config{Brokers: brokers, TransactionalID: id}),
//	    kafka.FXModule,
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewTransactionalProducerWithDI,
		func(p *TransactionalProducer) Publisher { return p },
	),
	fx.Invoke(RegisterProducerLifecycle),
)

// ProducerParams groups the dependencies of a TransactionalProducer.
type ProducerParams struct {
	fx.In

	Config     Config
	Broker     BrokerProducer         `optional:"true"` // Replaces the confluent client, mainly for tests
	Logger     Logger                 `optional:"true"`
	Serializer Serializer             `optional:"true"`
	Observer   observability.Observer `optional:"true"`
	Tracer     tracer.Tracer          `optional:"true"`
}

// NewTransactionalProducerWithDI builds a producer from injected
// dependencies.
func NewTransactionalProducerWithDI(params ProducerParams) (*TransactionalProducer, error) {
	var p *TransactionalProducer
	if params.Broker != nil {
		p = NewTransactionalProducerWithBroker(params.Config, params.Broker)
	} else {
		var err error
		if p, err = NewTransactionalProducer(params.Config); err != nil {
			return nil, err
		}
	}

	if params.Logger != nil {
		p.WithLogger(params.Logger)
	}
	if params.Serializer != nil {
		p.WithSerializer(params.Serializer)
	}
	if params.Observer != nil {
		p.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		p.WithTracer(params.Tracer)
	}
	return p, nil
}

// RegisterProducerLifecycle closes the producer when the application stops.
func RegisterProducerLifecycle(lc fx.Lifecycle, p *TransactionalProducer) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.logInfo(ctx, "Kafka producer ready", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return p.Close(ctx)
		},
	})
}
