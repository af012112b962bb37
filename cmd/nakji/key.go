package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nakji-network/connector-go/kafka"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Encode or decode message keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <namespace> <subject>",
			Short: "Print the wire form of a key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), kafka.NewKey(args[0], args[1]).String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <key>",
			Short: "Split a wire key into namespace and subject",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := kafka.ParseKey([]byte(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "namespace: %s\nsubject:   %s\n", key.Namespace, key.Subject)
				return nil
			},
		},
	)
	return cmd
}
