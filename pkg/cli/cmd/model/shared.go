package model

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/spf13/cobra"
)

// newRegistryConfigManager builds a config manager exposing only the registry
// root field, which is all the model commands need from the workspace config.
func newRegistryConfigManager(cmd *cobra.Command) *workspace.ConfigManager {
	selectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultRegistryRootFieldSelector(),
	}

	return workspace.NewCommandConfigManager(cmd, selectors)
}

// openRegistry opens the model registry rooted at the configured registry root.
// The caller is responsible for closing the returned registry.
func openRegistry(cfg *v1alpha1.Workspace) (*registry.Registry, error) {
	reg, err := registry.Open(cfg.Spec.Registry.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open model registry: %w", err)
	}

	return reg, nil
}

// formatSize renders a byte count in a compact human readable form.
func formatSize(size int64) string {
	const unit = 1024

	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
