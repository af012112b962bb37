package schema_registry

import "errors"

var (
	// ErrInvalidConfig is returned when registration is attempted without a host.
	ErrInvalidConfig = errors.New("schema_registry: invalid config")

	// ErrMalformedTypeName is returned for a message name with fewer than
	// two dot-separated segments.
	ErrMalformedTypeName = errors.New("schema_registry: malformed type name")

	// ErrDescriptorFileNotFound is returned when no <package>.proto file
	// exists under the resolver root.
	ErrDescriptorFileNotFound = errors.New("schema_registry: proto file not found")

	// ErrCompilerInvocationFailed is returned when protoc could not be run
	// or exited with an error.
	ErrCompilerInvocationFailed = errors.New("schema_registry: protoc invocation failed")

	// ErrDescriptorReadFailed is returned when the generated descriptor set
	// could not be read or encoded.
	ErrDescriptorReadFailed = errors.New("schema_registry: descriptor read failed")

	// ErrRegistrationTransport is returned when the register request failed
	// or the registry answered with a non-2xx status.
	ErrRegistrationTransport = errors.New("schema_registry: registration transport")
)
