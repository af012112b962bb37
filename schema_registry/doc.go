// Package schema_registry registers the protobuf schema of each event topic
// with the protoregistry service.
//
// A registration is a single POST of a JSON array to {host}/v1/register.
// Each element binds a topic schema string to a message type and carries
// the serialized FileDescriptorSet of that type:
//
//	[
//	  {
//	    "msg_type": "cmd",
//	    "topic": "nakji.ethereum.0_0_0.chain_Block",
//	    "proto_msg": "nakji.chain.Block",
//	    "descriptor": [10, 31, 103, ...]
//	  }
//	]
//
// The descriptor is written as an array of byte values, which is what the
// registry decodes.
//
// # Descriptor resolution
//
// Two DescriptorResolver implementations are provided:
//
//   - ProtocResolver finds <package>.proto below a root directory and runs
//     protoc --include_imports to produce <file>.desc next to it (or in
//     $DESCRIPTOR_OUTPUT_DIR). Existing .desc files are reused.
//   - RegistryResolver builds the same set from the descriptors compiled
//     into the binary, so neither protoc nor the sources are needed.
//
// # Usage
//
//	client, err := schema_registry.NewClient(schema_registry.Config{
//	    Host:     "http://protoregistry:8080",
//	    Resolver: schema_registry.ResolverRegistry,
//	})
//	if err != nil {
//	    return err
//	}
//	err = client.RegisterSchemas(ctx, kafka.EnvProd, kafka.MsgTypeFact, map[kafka.Topic]proto.Message{
//	    blockTopic: &evm.Block{},
//	})
//
// In the dev environment RegisterSchemas logs and returns without any
// network call.
//
// # Observability
//
// With an observer attached the client reports "resolve_descriptor" once per
// message type and "register" once per request, under the component name
// "schema_registry".
package schema_registry
