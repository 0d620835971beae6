package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/lifecycle"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/spf13/cobra"
)

// newCreateLifecycleConfig creates the lifecycle configuration for service deployment.
// The scoring endpoint reported by the deployer is written to endpoint.
func newCreateLifecycleConfig(spec deployer.Spec, endpoint *string) lifecycle.Config {
	return lifecycle.Config{
		TitleEmoji:         "🚀",
		TitleContent:       "Create service...",
		ActivityContent:    "deploying service '%s'",
		SuccessContent:     "service deployed",
		ErrorMessagePrefix: "failed to deploy service",
		Action: func(ctx context.Context, dep deployer.Deployer, _ string) error {
			deployedEndpoint, err := dep.Deploy(ctx, spec)
			if err != nil {
				return err
			}

			*endpoint = deployedEndpoint

			return nil
		},
	}
}

// NewCreateCmd creates the service create command.
func NewCreateCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Deploy a scoring service",
		Long: `Deploy the built scoring image as a service on the configured hosting
target. An already deployed service with the same name is updated in place and
keeps its credentials. The name defaults to the workspace name.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultNameFieldSelector(),
		workspace.DefaultRegistryRootFieldSelector(),
		workspace.DefaultTagFieldSelector(),
	}
	fieldSelectors = append(fieldSelectors, workspace.DefaultDeployFieldSelectors()...)

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		handler := lifecycle.WrapHandler(runtimeContainer, cfgManager,
			func(cmd *cobra.Command, manager *workspace.ConfigManager, deps lifecycle.Deps) error {
				return handleCreateRunE(cmd, manager, deps, lifecycle.ServiceName(args, manager.Config))
			},
		)

		return handler(cobraCmd, args)
	}

	return cmd
}

// handleCreateRunE deploys the scoring service and persists the service record.
// Credentials from an earlier deployment are reused so clients keep scoring
// across updates.
func handleCreateRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	deps lifecycle.Deps,
	serviceName string,
) error {
	cfg := cfgManager.Config

	if serviceName == "" {
		return lifecycle.ErrServiceNameRequired
	}

	if deps.Timer != nil {
		deps.Timer.NewStage()
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	existing, err := reg.GetService(cmd.Context(), serviceName)
	recorded := err == nil

	if err != nil && !errors.Is(err, registry.ErrServiceNotFound) {
		return fmt.Errorf("failed to read service record: %w", err)
	}

	keys := serviceKeys(cfg.Spec.Deploy.Auth, existing.Keys)
	spec := newDeploySpec(cfg, serviceName, keys)

	var endpoint string

	err = lifecycle.RunWithConfig(cmd, deps, newCreateLifecycleConfig(spec, &endpoint), cfg, serviceName)
	if err != nil {
		return err
	}

	record := registry.Service{
		Name:        serviceName,
		Target:      cfg.Spec.Deploy.Target,
		Image:       spec.Image,
		Endpoint:    endpoint,
		AuthEnabled: cfg.Spec.Deploy.Auth,
		Keys:        keys,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if recorded {
		record.CreatedAt = existing.CreatedAt
	}

	err = reg.PutService(cmd.Context(), record)
	if err != nil {
		return fmt.Errorf("failed to record service deployment: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	displayConnection(cmd.OutOrStdout(), record)

	return nil
}

// serviceKeys returns the credentials for a deployment. Keys from an earlier
// deployment survive, fresh ones are generated only at first authenticated
// deploy.
func serviceKeys(auth bool, existing registry.Keys) registry.Keys {
	if !auth {
		return registry.Keys{}
	}

	if existing.Primary != "" && existing.Secondary != "" {
		return existing
	}

	return deployer.GenerateKeys()
}
