package observability

import "time"

// Observer receives a notification each time an instrumented operation
// completes. Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveOperation is called once per completed operation.
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component identifies the reporting package.
	// Examples: "kafka", "schema_registry"
	Component string

	// Operation names what was performed.
	// Examples:
	//   kafka:           "init", "begin", "produce", "commit", "abort", "publish", "delivery"
	//   schema_registry: "resolve_descriptor", "register"
	Operation string

	// Resource identifies the primary resource.
	// Examples: wire topic "prod.fct.nakji.ethereum.0_1_0.evm_Block", registry host
	Resource string

	// SubResource provides secondary context (optional).
	// Examples: message key "ethereum.Block", fully-qualified message name
	SubResource string

	// Duration is the time from start to completion.
	Duration time.Duration

	// Error is the error returned by the operation, nil on success.
	Error error

	// Size is the amount of data involved (optional).
	// Examples: payload bytes for produce, message count for publish,
	// record count for register.
	Size int64

	// Metadata carries operation-specific details (optional).
	// Examples: {"attempt": 2}, {"status_code": 200}, {"outcome": "abandoned"}
	Metadata map[string]interface{}
}
