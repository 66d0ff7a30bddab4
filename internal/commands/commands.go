// Package commands wires the deployment tool's cobra commands to the
// orchestrator, the build pipeline and the deployment logs.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	annotationConfig = "config"
	configOptional   = "optional"
)

// All returns every subcommand of the tool.
func All() []*cobra.Command {
	return []*cobra.Command{
		buildCmd,
		declareZklinkCmd,
		deployZklinkCmd,
		deployMulticallCmd,
		deployFaucetTokenCmd,
		addTokenCmd,
		addBridgeCmd,
		mintFaucetTokenCmd,
		upgradeZklinkCmd,
		statusCmd,
	}
}

// Register declares the global flags on root and adds every subcommand.
func Register(root *cobra.Command, v *viper.Viper) error {
	if err := DeclareGlobalFlags(root, v); err != nil {
		return err
	}

	root.AddCommand(All()...)

	return nil
}

// ConfigOptional reports whether cmd can run without a network config file.
func ConfigOptional(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationConfig] == configOptional
}
