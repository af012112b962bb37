package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nakji",
		Short: "Inspect connector topics and keys, register event schemas",
		Long: `Tools for nakji connectors.

Examples:
  # Topic of nakji.evm.Block for the connector in ./manifest.yaml
  nakji topic build --env prod --type fct --message nakji.evm.Block

  # Split a wire topic into its parts
  nakji topic parse prod.fct.nakji.ethereum.0_1_0.evm_Block

  # Encode and decode message keys
  nakji key encode ethereum 0xabc
  nakji key decode ethereum.0xabc

  # Register two message types compiled with protoc --include_imports
  nakji register --type fct --descriptor-set evm.desc \
    --message nakji.evm.Block --message nakji.evm.Transaction`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTopicCmd(),
		newKeyCmd(),
		newRegisterCmd(),
	)
	return root
}
