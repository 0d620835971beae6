package model

import (
	"fmt"
	"io"
	"sort"
	"strings"

	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/spf13/cobra"
)

// NewGetCmd creates the model get command.
func NewGetCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "get <name>",
		Short:        "Show a registered model",
		Long:         `Show the details of one registered model version.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cfgManager := newRegistryConfigManager(cmd)

	cmd.Flags().Int("version", 0, "Model version to show (defaults to the latest)")

	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		handler := runtime.RunEWithRuntime(runtimeContainer,
			func(cobraCmd *cobra.Command, _ runtime.Injector) error {
				return handleGetRunE(cobraCmd, cfgManager, args[0])
			},
		)

		return handler(cobraCmd, args)
	}

	return cmd
}

// handleGetRunE fetches one model version and prints its details.
func handleGetRunE(cmd *cobra.Command, cfgManager *workspace.ConfigManager, name string) error {
	cfg, err := cfgManager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	version, _ := cmd.Flags().GetInt("version")

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	model, err := reg.GetModel(cmd.Context(), name, version)
	if err != nil {
		return fmt.Errorf("failed to get model: %w", err)
	}

	displayModel(cmd.OutOrStdout(), model)

	return nil
}

// displayModel prints one model version as key/value lines.
func displayModel(writer io.Writer, model registry.Model) {
	_, _ = fmt.Fprintf(writer, "Name:        %s\n", model.Name)
	_, _ = fmt.Fprintf(writer, "Version:     %d\n", model.Version)

	if model.Description != "" {
		_, _ = fmt.Fprintf(writer, "Description: %s\n", model.Description)
	}

	_, _ = fmt.Fprintf(writer, "Digest:      %s\n", model.Digest)
	_, _ = fmt.Fprintf(writer, "Size:        %s\n", formatSize(model.Size))
	_, _ = fmt.Fprintf(writer, "Path:        %s\n", model.Path)
	_, _ = fmt.Fprintf(writer, "Created:     %s\n", model.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(model.Tags) > 0 {
		_, _ = fmt.Fprintf(writer, "Tags:        %s\n", formatTags(model.Tags))
	}
}

// formatTags renders tags as a stable, comma separated key=value list.
func formatTags(tags map[string]string) string {
	pairs := make([]string, 0, len(tags))
	for key, value := range tags {
		pairs = append(pairs, key+"="+value)
	}

	sort.Strings(pairs)

	return strings.Join(pairs, ", ")
}
