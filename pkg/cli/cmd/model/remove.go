package model

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/cli/flags"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the model remove command.
func NewRemoveCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a registered model",
		Long: `Remove a model version from the registry, or every version of the name
when no version is given. Artifact files are deleted once no remaining
version references them.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cfgManager := newRegistryConfigManager(cmd)

	cmd.Flags().Int("version", 0, "Model version to remove (defaults to all versions)")

	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		handler := runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
			func(cobraCmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
				return handleRemoveRunE(cobraCmd, cfgManager, tmr, args[0])
			},
		))

		return handler(cobraCmd, args)
	}

	return cmd
}

// handleRemoveRunE removes the named model from the registry.
func handleRemoveRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	name string,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	version, _ := cmd.Flags().GetInt("version")

	if tmr != nil {
		tmr.NewStage()
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Remove model...",
		Emoji:   "🗑️",
		Writer:  cmd.OutOrStdout(),
	})
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "removing model '%s'",
		Args:    []any{name},
		Writer:  cmd.OutOrStdout(),
	})

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	err = reg.RemoveModel(cmd.Context(), name, version)
	if err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "model removed",
		Timer:   outputTimer,
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}
