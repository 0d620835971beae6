package image

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/di"
	"github.com/spf13/cobra"
)

// NewImageCmd creates the parent image command and wires build and publish
// subcommands beneath it.
func NewImageCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage scoring images",
		Long: `Manage containerized scoring images, including building them from ` +
			`registered models, listing, publishing, and removal.`,
		Args:         cobra.NoArgs,
		RunE:         handleImageRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewBuildCmd(runtimeContainer))
	cmd.AddCommand(NewListCmd(runtimeContainer))
	cmd.AddCommand(NewPushCmd(runtimeContainer))
	cmd.AddCommand(NewRemoveCmd(runtimeContainer))

	return cmd
}

//nolint:gochecknoglobals // Injected for testability to simulate help failures.
var helpRunner = func(cmd *cobra.Command) error {
	return cmd.Help()
}

func handleImageRunE(cmd *cobra.Command, _ []string) error {
	// Cobra Help() can return an error (e.g., output stream or template issues); wrap it for clarity.
	err := helpRunner(cmd)
	if err != nil {
		return fmt.Errorf("displaying image command help: %w", err)
	}

	return nil
}
