package model

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/di"
	"github.com/spf13/cobra"
)

// NewModelCmd creates the parent model command and wires registry subcommands beneath it.
func NewModelCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage registered models",
		Long: `Manage the local model registry, including registering trained model ` +
			`artifacts, listing versions, and removing entries.`,
		Args:         cobra.NoArgs,
		RunE:         handleModelRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRegisterCmd(runtimeContainer))
	cmd.AddCommand(NewListCmd(runtimeContainer))
	cmd.AddCommand(NewGetCmd(runtimeContainer))
	cmd.AddCommand(NewRemoveCmd(runtimeContainer))

	return cmd
}

//nolint:gochecknoglobals // Injected for testability to simulate help failures.
var helpRunner = func(cmd *cobra.Command) error {
	return cmd.Help()
}

func handleModelRunE(cmd *cobra.Command, _ []string) error {
	// Cobra Help() can return an error (e.g., output stream or template issues); wrap it for clarity.
	err := helpRunner(cmd)
	if err != nil {
		return fmt.Errorf("displaying model command help: %w", err)
	}

	return nil
}
