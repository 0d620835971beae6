package cmd

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/flags"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/fsutil/scaffolder"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewInitCmd wires the init command using the shared runtime container.
func NewInitCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a scoring service workspace",
		Long: `Initialize a workspace with a msail.yaml configuration file, a starter
scoring script, and a dependency descriptor.`,
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultNameFieldSelector(),
		workspace.DefaultRegistryRootFieldSelector(),
		workspace.DefaultModelFieldSelector(),
		workspace.DefaultBaseImageFieldSelector(),
		workspace.DefaultTagFieldSelector(),
		workspace.DefaultScriptFieldSelector(),
		workspace.DefaultDependenciesFieldSelector(),
	}
	fieldSelectors = append(fieldSelectors, workspace.DefaultDeployFieldSelectors()...)

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().StringP("output", "o", ".", "Directory to scaffold the workspace files into")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing files")

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cobraCmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleInitRunE(cobraCmd, cfgManager, tmr)
		},
	))

	return cmd
}

// handleInitRunE scaffolds the workspace files from flag-provided configuration.
// The on-disk config file is deliberately ignored so init always works from
// defaults and flags, even inside an already initialized workspace.
func handleInitRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
) error {
	if tmr != nil {
		tmr.Start()
	}

	cfg, err := cfgManager.LoadConfigFromFlagsOnly()
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Init workspace...",
		Emoji:   "📝",
		Writer:  cmd.OutOrStdout(),
	})

	err = scaffolder.NewScaffolder(*cfg, cmd.OutOrStdout()).Scaffold(output, force)
	if err != nil {
		return fmt.Errorf("failed to scaffold workspace: %w", err)
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "workspace initialized",
		Timer:   flags.MaybeTimer(cmd, tmr),
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}
