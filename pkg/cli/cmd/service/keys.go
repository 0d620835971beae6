package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/flags"
	"github.com/devantler-tech/msail/pkg/cli/lifecycle"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// ErrAuthDisabled indicates a key operation on a service deployed without
// authentication.
var ErrAuthDisabled = errors.New("authentication is disabled for service")

// NewKeysCmd creates the service keys command.
func NewKeysCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys [name]",
		Short: "Show or rotate service credentials",
		Long: `Show the scoring endpoint and credentials of a deployed service. With
--regenerate, replace the named key and hand the new pair to the running
service while the other key keeps working. The name defaults to the workspace
name.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultNameFieldSelector(),
		workspace.DefaultRegistryRootFieldSelector(),
	}
	fieldSelectors = append(fieldSelectors, workspace.DefaultDeployFieldSelectors()...)

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().String("regenerate", "",
		"Regenerate the named key ('primary' or 'secondary')")

	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		handler := runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
			func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
				factory, err := runtime.ResolveDeployerFactory(injector)
				if err != nil {
					return err
				}

				return handleKeysRunE(cmd, cfgManager, tmr, factory, args)
			},
		))

		return handler(cobraCmd, args)
	}

	return cmd
}

// handleKeysRunE dispatches between showing and rotating credentials.
func handleKeysRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	factory deployer.Factory,
	args []string,
) error {
	regenerate, _ := cmd.Flags().GetString("regenerate")

	if regenerate == "" {
		return showServiceKeys(cmd, cfgManager, args)
	}

	return regenerateServiceKey(cmd, cfgManager, tmr, factory, args, regenerate)
}

// showServiceKeys prints the endpoint and credentials of a recorded service.
// The config is loaded silently so the output stays machine friendly.
func showServiceKeys(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	args []string,
) error {
	cfg, err := cfgManager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	serviceName := lifecycle.ServiceName(args, cfg)
	if serviceName == "" {
		return lifecycle.ErrServiceNameRequired
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	service, err := reg.GetService(cmd.Context(), serviceName)
	if err != nil {
		return fmt.Errorf("failed to get service: %w", err)
	}

	displayConnection(cmd.OutOrStdout(), service)

	return nil
}

// newKeysLifecycleConfig creates the lifecycle configuration for key rotation.
// A running service is redeployed in place so the scoring endpoint accepts the
// new pair; a service that is not deployed only has its record updated.
func newKeysLifecycleConfig(
	cfg *v1alpha1.Workspace,
	service registry.Service,
	endpoint *string,
) lifecycle.Config {
	return lifecycle.Config{
		TitleEmoji:         "🔐",
		TitleContent:       "Regenerate key...",
		ActivityContent:    "rotating key for service '%s'",
		SuccessContent:     "key regenerated",
		ErrorMessagePrefix: "failed to regenerate key",
		Action: func(ctx context.Context, dep deployer.Deployer, serviceName string) error {
			deployed, err := dep.Exists(ctx, serviceName)
			if err != nil {
				return err
			}

			if !deployed {
				return nil
			}

			spec := newDeploySpec(cfg, serviceName, service.Keys)
			// The rotation keeps the image and auth posture the service was
			// deployed with.
			spec.Image = service.Image
			spec.Auth = service.AuthEnabled

			deployedEndpoint, err := dep.Deploy(ctx, spec)
			if err != nil {
				return err
			}

			*endpoint = deployedEndpoint

			return nil
		},
	}
}

// regenerateServiceKey rotates the named credential, hands the new pair to the
// running service, and persists the updated record.
func regenerateServiceKey(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	factory deployer.Factory,
	args []string,
	keyName string,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	serviceName := lifecycle.ServiceName(args, cfg)
	if serviceName == "" {
		return lifecycle.ErrServiceNameRequired
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	service, err := reg.GetService(cmd.Context(), serviceName)
	if err != nil {
		return fmt.Errorf("failed to get service: %w", err)
	}

	if !service.AuthEnabled {
		return fmt.Errorf("%w: %s", ErrAuthDisabled, serviceName)
	}

	keys, err := deployer.RegenerateKey(service.Keys, keyName)
	if err != nil {
		return fmt.Errorf("failed to regenerate key: %w", err)
	}

	service.Keys = keys

	if tmr != nil {
		tmr.NewStage()
	}

	deps := lifecycle.Deps{Timer: tmr, Factory: factory}

	var endpoint string

	err = lifecycle.RunWithConfig(cmd, deps, newKeysLifecycleConfig(cfg, service, &endpoint), cfg, serviceName)
	if err != nil {
		return err
	}

	if endpoint != "" {
		service.Endpoint = endpoint
	}

	service.UpdatedAt = time.Now().UTC()

	err = reg.PutService(cmd.Context(), service)
	if err != nil {
		return fmt.Errorf("failed to record key rotation: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	displayConnection(cmd.OutOrStdout(), service)

	return nil
}
