package cmd

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/cli/cmd/image"
	"github.com/devantler-tech/msail/pkg/cli/cmd/model"
	"github.com/devantler-tech/msail/pkg/cli/cmd/service"
	"github.com/devantler-tech/msail/pkg/cli/flags"
	"github.com/devantler-tech/msail/pkg/cli/ui/asciiart"
	"github.com/devantler-tech/msail/pkg/cli/ui/errorhandler"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := runtime.NewRuntime()

	// Create the command using the helper (no field selectors needed for root command)
	cmd := &cobra.Command{
		Use:          "msail",
		Short:        "MSail is a CLI tool for shipping trained models as containerized scoring services",
		Long:         "MSail is a CLI tool for shipping trained models as containerized scoring services",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	// Set version if available
	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().Bool(
		flags.TimingFlagName,
		false,
		"Show per-activity timing output",
	)

	// Add all subcommands
	cmd.AddCommand(NewInitCmd(runtimeContainer))
	cmd.AddCommand(model.NewModelCmd(runtimeContainer))
	cmd.AddCommand(image.NewImageCmd(runtimeContainer))
	cmd.AddCommand(service.NewServiceCmd(runtimeContainer))
	cmd.AddCommand(NewServeCmd(runtimeContainer))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// --- internals ---

// handleRootRunE handles the root command.
func handleRootRunE(
	cmd *cobra.Command,
	_ []string,
) error {
	asciiart.PrintMSailLogo(cmd.OutOrStdout())

	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
