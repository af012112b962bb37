// Package testproto builds small protobuf message types at runtime so tests
// can exercise topic derivation, serialization and descriptor resolution
// without generated code.
package testproto

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	_ "google.golang.org/protobuf/types/known/timestamppb" // registers google/protobuf/timestamp.proto
)

var (
	filesOnce sync.Once
	evmFile   protoreflect.FileDescriptor
	chainFile protoreflect.FileDescriptor
)

func files() {
	filesOnce.Do(func() {
		evmFile = NewFile("nakji/evm/evm.proto", "nakji.evm")
		chainFile = NewFile("chain.proto", "nakji.chain")
	})
}

// EVMFile returns the descriptor of nakji/evm/evm.proto (package nakji.evm).
func EVMFile() protoreflect.FileDescriptor {
	files()
	return evmFile
}

// ChainFile returns the descriptor of chain.proto (package nakji.chain).
func ChainFile() protoreflect.FileDescriptor {
	files()
	return chainFile
}

// Block returns an empty message of type <pkg>.Block from fd.
func Block(fd protoreflect.FileDescriptor) *dynamicpb.Message {
	return dynamicpb.NewMessage(fd.Messages().ByName("Block"))
}

// Transaction returns an empty message of type <pkg>.Transaction from fd.
func Transaction(fd protoreflect.FileDescriptor) *dynamicpb.Message {
	return dynamicpb.NewMessage(fd.Messages().ByName("Transaction"))
}

// NewBlock returns a populated nakji.evm.Block.
func NewBlock(number uint64, hash string) *dynamicpb.Message {
	m := Block(EVMFile())
	fields := m.Descriptor().Fields()
	m.Set(fields.ByName("number"), protoreflect.ValueOfUint64(number))
	m.Set(fields.ByName("hash"), protoreflect.ValueOfString(hash))
	return m
}

// NewTransaction returns a populated nakji.evm.Transaction.
func NewTransaction(hash string, blockNumber uint64) *dynamicpb.Message {
	m := Transaction(EVMFile())
	fields := m.Descriptor().Fields()
	m.Set(fields.ByName("hash"), protoreflect.ValueOfString(hash))
	m.Set(fields.ByName("block_number"), protoreflect.ValueOfUint64(blockNumber))
	return m
}

// NewFile builds a file at path in package pkg declaring Block and
// Transaction. It panics if the descriptor does not link.
func NewFile(path, pkg string) protoreflect.FileDescriptor {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(path),
		Package:    proto.String(pkg),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/timestamp.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Block"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("number", 1, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
					scalar("hash", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					{
						Name:     proto.String("timestamp"),
						Number:   proto.Int32(3),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
						TypeName: proto.String(".google.protobuf.Timestamp"),
					},
				},
			},
			{
				Name: proto.String("Transaction"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("hash", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalar("block_number", 2, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
				},
			},
		},
	}

	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("testproto: build %s: %v", path, err))
	}
	return fd
}

func scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
	}
}
