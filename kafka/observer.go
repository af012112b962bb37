package kafka

import (
	"time"

	"github.com/nakji-network/connector-go/observability"
)

// observeOperation safely calls the observer if it's not nil.
func (p *TransactionalProducer) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	observer, _, _ := p.hooks()
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component:   "kafka",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
