package service

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/di"
	"github.com/spf13/cobra"
)

// NewServiceCmd creates the parent service command and wires deployment subcommands beneath it.
func NewServiceCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage deployed scoring services",
		Long: `Manage scoring services on the configured hosting target, including ` +
			`deploying built images, listing deployments, rotating credentials, and teardown.`,
		Args:         cobra.NoArgs,
		RunE:         handleServiceRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewCreateCmd(runtimeContainer))
	cmd.AddCommand(NewDeleteCmd(runtimeContainer))
	cmd.AddCommand(NewListCmd(runtimeContainer))
	cmd.AddCommand(NewKeysCmd(runtimeContainer))

	return cmd
}

//nolint:gochecknoglobals // Injected for testability to simulate help failures.
var helpRunner = func(cmd *cobra.Command) error {
	return cmd.Help()
}

func handleServiceRunE(cmd *cobra.Command, _ []string) error {
	// Cobra Help() can return an error (e.g., output stream or template issues); wrap it for clarity.
	err := helpRunner(cmd)
	if err != nil {
		return fmt.Errorf("displaying service command help: %w", err)
	}

	return nil
}
