package model

import (
	"fmt"
	"io"

	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/spf13/cobra"
)

// NewListCmd creates the model list command.
func NewListCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List registered models",
		Long:         `List every model version in the local registry.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := newRegistryConfigManager(cmd)

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer,
		func(cobraCmd *cobra.Command, _ runtime.Injector) error {
			return handleListRunE(cobraCmd, cfgManager)
		},
	)

	return cmd
}

// handleListRunE prints all registered model versions. The config is loaded
// silently so the output stays machine friendly.
func handleListRunE(cmd *cobra.Command, cfgManager *workspace.ConfigManager) error {
	cfg, err := cfgManager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	models, err := reg.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	displayModels(cmd.OutOrStdout(), models)

	return nil
}

// displayModels outputs one line per model version. If no models are
// registered, displays "No models found.".
func displayModels(writer io.Writer, models []registry.Model) {
	if len(models) == 0 {
		_, _ = fmt.Fprintln(writer, "No models found.")

		return
	}

	for _, model := range models {
		_, _ = fmt.Fprintf(
			writer,
			"%s:%d  %s  %s\n",
			model.Name,
			model.Version,
			formatSize(model.Size),
			model.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
}
