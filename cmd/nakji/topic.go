package main

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/nakji-network/connector-go/config"
	"github.com/nakji-network/connector-go/kafka"
)

func newTopicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Build or parse wire topics",
	}
	cmd.AddCommand(newTopicBuildCmd(), newTopicParseCmd())
	return cmd
}

type topicBuildOptions struct {
	manifestPath string
	env          string
	msgType      string
	author       string
	name         string
	version      string
	message      string
	event        string
}

func newTopicBuildCmd() *cobra.Command {
	var opts topicBuildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print the wire topic and schema string of a message type",
		Long: `Print the wire topic and schema string of a message type.

Author, name and version come from the manifest unless given as flags.
The event is derived from --message or given directly with --event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic, err := opts.topic()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), topic.String())
			fmt.Fprintln(cmd.OutOrStdout(), topic.Schema())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.manifestPath, "manifest", config.ManifestFileName, "manifest file")
	f.StringVar(&opts.env, "env", "", "environment: test, dev, staging, prod")
	f.StringVar(&opts.msgType, "type", "", "message type: fct, bf, cdc, cmd, sys")
	f.StringVar(&opts.author, "author", "", "connector author (overrides manifest)")
	f.StringVar(&opts.name, "name", "", "connector name (overrides manifest)")
	f.StringVar(&opts.version, "version", "", "connector version (overrides manifest)")
	f.StringVar(&opts.message, "message", "", "fully-qualified protobuf message name, e.g. nakji.evm.Block")
	f.StringVar(&opts.event, "event", "", "event name, e.g. evm_Block")
	_ = cmd.MarkFlagRequired("env")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("message", "event")
	cmd.MarkFlagsOneRequired("message", "event")
	return cmd
}

func (o topicBuildOptions) topic() (kafka.Topic, error) {
	env, err := kafka.ParseEnv(o.env)
	if err != nil {
		return kafka.Topic{}, err
	}
	msgType, err := kafka.ParseMessageType(o.msgType)
	if err != nil {
		return kafka.Topic{}, err
	}

	event := o.event
	if o.message != "" {
		if event, err = kafka.EventName(o.message); err != nil {
			return kafka.Topic{}, err
		}
	}

	author, name, version := o.author, o.name, o.version
	if author == "" || name == "" || version == "" {
		m, err := config.LoadManifestFile(o.manifestPath)
		if err != nil {
			return kafka.Topic{}, err
		}
		if author == "" {
			author = m.Author
		}
		if name == "" {
			name = m.Name
		}
		if version == "" {
			version = m.Version.String()
		}
	}

	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return kafka.Topic{}, fmt.Errorf("version %q: %w", version, err)
	}
	return kafka.NewTopic(env, msgType, author, name, *v, event), nil
}

func newTopicParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <topic>",
		Short: "Split a wire topic into its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, err := kafka.ParseTopic(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "env:       %s\n", topic.Env)
			fmt.Fprintf(out, "type:      %s\n", topic.MsgType)
			fmt.Fprintf(out, "author:    %s\n", topic.Author)
			fmt.Fprintf(out, "connector: %s\n", topic.ConnectorName)
			fmt.Fprintf(out, "version:   %s\n", topic.Version.String())
			fmt.Fprintf(out, "event:     %s\n", topic.EventName)
			fmt.Fprintf(out, "schema:    %s\n", topic.Schema())
			return nil
		},
	}
}
