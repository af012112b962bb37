package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/nakji-network/connector-go/config"
	"github.com/nakji-network/connector-go/connector"
	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/logger"
	"github.com/nakji-network/connector-go/schema_registry"
)

type registerOptions struct {
	manifestPath  string
	configPath    string
	msgType       string
	descriptorSet string
	messages      []string
	logLevel      string
}

func newRegisterCmd() *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register message types from a descriptor set with the protoregistry",
		Long: `Register message types with the protoregistry.

The message types are read from a FileDescriptorSet, as written by
protoc --include_imports --descriptor_set_out. Topics are derived from the
manifest and kafka.env; the registry host comes from config.yaml. In the dev
environment nothing is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.manifestPath, "manifest", config.ManifestFileName, "manifest file")
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default: search the config paths)")
	f.StringVar(&opts.msgType, "type", "", "message type: fct, bf, cdc, cmd, sys")
	f.StringVar(&opts.descriptorSet, "descriptor-set", "", "FileDescriptorSet file")
	f.StringArrayVar(&opts.messages, "message", nil, "fully-qualified message name, repeatable")
	f.StringVar(&opts.logLevel, "log-level", logger.Info, "log level: debug, info, warning, error")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("descriptor-set")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func runRegister(cmd *cobra.Command, opts registerOptions) error {
	msgType, err := kafka.ParseMessageType(opts.msgType)
	if err != nil {
		return err
	}

	m, err := config.LoadManifestFile(opts.manifestPath)
	if err != nil {
		return err
	}
	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	msgs, err := loadMessages(opts.descriptorSet, opts.messages)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerClient(logger.Config{Level: opts.logLevel, ServiceName: "nakji-cli"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Zap.Sync() }()

	rcfg, err := connector.RegistryConfig(cfg)
	if err != nil {
		return err
	}
	registry, err := schema_registry.NewClient(rcfg)
	if err != nil {
		return err
	}
	// The messages only exist in the descriptor set, so it is the source of
	// truth regardless of the configured resolver.
	registry.WithResolver(schema_registry.RegistryResolver{}).WithLogger(log)

	// Registration only: the connector gets no producer.
	c := connector.NewWithDeps(m, cfg, nil, registry).WithLogger(log)
	if err := c.RegisterEventTypes(cmd.Context(), msgType, msgs...); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.Env() == kafka.EnvDev {
		fmt.Fprintf(out, "dev environment: skipped registration of %d message types\n", len(msgs))
		return nil
	}
	for _, msg := range msgs {
		topic, err := c.TopicFor(msgType, msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "registered %s -> %s\n", msg.ProtoReflect().Descriptor().FullName(), topic.Schema())
	}
	return nil
}

// loadMessages reads a FileDescriptorSet and returns an empty dynamic
// message for each name.
func loadMessages(path string, names []string) ([]proto.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	msgs := make([]proto.Message, 0, len(names))
	for _, name := range names {
		d, err := files.FindDescriptorByName(protoreflect.FullName(name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		md, ok := d.(protoreflect.MessageDescriptor)
		if !ok {
			return nil, fmt.Errorf("%s is not a message", name)
		}
		msgs = append(msgs, dynamicpb.NewMessage(md))
	}
	return msgs, nil
}
