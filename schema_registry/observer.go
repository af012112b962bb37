package schema_registry

import (
	"time"

	"github.com/nakji-network/connector-go/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resolve_descriptor: resource is the message name, subResource its .proto path
//   - register: resource is the registry host, subResource the message type
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "schema_registry",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
