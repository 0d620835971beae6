package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/devantler-tech/msail/pkg/cli/flags"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewRegisterCmd creates the model register command.
func NewRegisterCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <path>",
		Short: "Register a model artifact",
		Long: `Register a trained model artifact in the local registry. The artifact is
copied into content-addressed storage and assigned the next version number
for its name.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cfgManager := newRegistryConfigManager(cmd)

	cmd.Flags().String("name", "",
		"Model name (defaults to the artifact file name without extension)")
	cmd.Flags().String("description", "", "Human readable description of the model")
	cmd.Flags().StringToString("tag", nil, "Metadata tags in key=value form")

	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		handler := runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
			func(cobraCmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
				return handleRegisterRunE(cobraCmd, cfgManager, tmr, args[0])
			},
		))

		return handler(cobraCmd, args)
	}

	return cmd
}

// handleRegisterRunE stores the artifact in the registry under the resolved
// model name.
func handleRegisterRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	artifactPath string,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = defaultModelName(artifactPath)
	}

	description, _ := cmd.Flags().GetString("description")
	tags, _ := cmd.Flags().GetStringToString("tag")

	if tmr != nil {
		tmr.NewStage()
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Register model...",
		Emoji:   "📥",
		Writer:  cmd.OutOrStdout(),
	})
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "registering model '%s'",
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

	model, err := reg.RegisterModel(cmd.Context(), registry.RegisterModelOptions{
		Path:        artifactPath,
		Name:        name,
		Description: description,
		Tags:        tags,
	})
	if err != nil {
		return fmt.Errorf("failed to register model: %w", err)
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "model '%s' registered as version %d",
		Args:    []any{model.Name, model.Version},
		Timer:   outputTimer,
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}

// defaultModelName derives a model name from the artifact file name by
// stripping the extension.
func defaultModelName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
