package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/lifecycle"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/spf13/cobra"
)

// newDeleteLifecycleConfig creates the lifecycle configuration for service
// teardown. The deletion succeeds as long as either the hosting target or the
// registry held the service.
func newDeleteLifecycleConfig(cfgManager *workspace.ConfigManager) lifecycle.Config {
	return lifecycle.Config{
		TitleEmoji:         "🗑️",
		TitleContent:       "Delete service...",
		ActivityContent:    "deleting service '%s'",
		SuccessContent:     "service deleted",
		ErrorMessagePrefix: "failed to delete service",
		Action: func(ctx context.Context, dep deployer.Deployer, serviceName string) error {
			targetErr := dep.Delete(ctx, serviceName)
			if targetErr != nil && !errors.Is(targetErr, deployer.ErrServiceNotFound) {
				return targetErr
			}

			recordErr := removeServiceRecord(ctx, cfgManager.Config, serviceName)
			if recordErr != nil && !errors.Is(recordErr, registry.ErrServiceNotFound) {
				return recordErr
			}

			if targetErr != nil && recordErr != nil {
				return fmt.Errorf("%w: %s", deployer.ErrServiceNotFound, serviceName)
			}

			return nil
		},
	}
}

// NewDeleteCmd creates the service delete command.
func NewDeleteCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a scoring service",
		Long: `Delete a scoring service from the hosting target and drop its record.
The name defaults to the workspace name.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultNameFieldSelector(),
		workspace.DefaultRegistryRootFieldSelector(),
	}
	fieldSelectors = append(fieldSelectors, workspace.DefaultConnectionFieldSelectors()...)

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.RunE = lifecycle.NewStandardRunE(runtimeContainer, cfgManager, newDeleteLifecycleConfig(cfgManager))

	return cmd
}

// removeServiceRecord drops the stored service record.
func removeServiceRecord(ctx context.Context, cfg *v1alpha1.Workspace, serviceName string) error {
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	return reg.RemoveService(ctx, serviceName)
}
