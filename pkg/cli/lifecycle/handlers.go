package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/flags"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// ErrMissingDeployerDependency indicates that a lifecycle command resolved a nil deployer.
var ErrMissingDeployerDependency = errors.New("missing deployer dependency")

// ErrServiceNameRequired indicates that no service name could be resolved from
// the command arguments or the workspace configuration.
var ErrServiceNameRequired = errors.New("service name is required")

// Action represents a lifecycle operation executed against a scoring service.
// The action receives a context for cancellation, the deployer for the
// configured hosting target, and the service name. It returns an error if the
// lifecycle operation fails.
type Action func(
	ctx context.Context,
	dep deployer.Deployer,
	serviceName string,
) error

// Config describes the messaging and action behavior for a lifecycle command.
// It configures the user-facing messages displayed during command execution
// and specifies the action to perform on the deployer.
//
// ActivityContent is a printf format string receiving the service name.
type Config struct {
	TitleEmoji         string
	TitleContent       string
	ActivityContent    string
	SuccessContent     string
	ErrorMessagePrefix string
	Action             Action
}

// Deps groups the injectable collaborators required by lifecycle commands.
type Deps struct {
	Timer   timer.Timer
	Factory deployer.Factory
}

// ServiceName resolves the target service name from the first positional
// argument, falling back to the workspace name from configuration.
func ServiceName(args []string, workspaceCfg *v1alpha1.Workspace) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}

	if workspaceCfg != nil {
		return workspaceCfg.Spec.Name
	}

	return ""
}

// NewStandardRunE creates a standard RunE handler for simple lifecycle commands.
// It handles dependency injection from the runtime container and delegates to
// HandleRunE with the provided lifecycle configuration. The service name is
// resolved from the first positional argument, falling back to the workspace
// name.
//
// This is the recommended way to create lifecycle command handlers for standard
// operations like delete. The returned function can be assigned directly to a
// cobra.Command's RunE field.
func NewStandardRunE(
	runtimeContainer *runtime.Runtime,
	cfgManager *workspace.ConfigManager,
	config Config,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		handler := WrapHandler(
			runtimeContainer,
			cfgManager,
			func(cmd *cobra.Command, manager *workspace.ConfigManager, deps Deps) error {
				return HandleRunE(cmd, manager, deps, config, ServiceName(args, manager.Config))
			},
		)

		return handler(cmd, args)
	}
}

// WrapHandler resolves lifecycle dependencies from the runtime container
// and invokes the provided handler function with those dependencies.
//
// The workspace configuration is loaded first, then the deployer factory is
// resolved from the injector so tests can substitute it.
//
// This function is used internally by NewStandardRunE but can also be used
// directly for custom lifecycle handlers that need dependency injection but
// require custom logic beyond the standard HandleRunE flow.
func WrapHandler(
	runtimeContainer *runtime.Runtime,
	cfgManager *workspace.ConfigManager,
	handler func(*cobra.Command, *workspace.ConfigManager, Deps) error,
) func(*cobra.Command, []string) error {
	return runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(
			func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
				if tmr != nil {
					tmr.Start()
				}

				outputTimer := flags.MaybeTimer(cmd, tmr)

				_, err := cfgManager.LoadConfig(outputTimer)
				if err != nil {
					return fmt.Errorf("failed to load workspace configuration: %w", err)
				}

				factory, err := runtime.ResolveDeployerFactory(injector)
				if err != nil {
					return err
				}

				deps := Deps{Timer: tmr, Factory: factory}

				return handler(cmd, cfgManager, deps)
			},
		),
	)
}

// HandleRunE orchestrates the standard lifecycle workflow.
// It performs the following steps in order:
//  1. Create a new timer stage (config was already loaded in WrapHandler)
//  2. Execute the lifecycle action via RunWithConfig
//
// Note: The workspace configuration is already loaded by WrapHandler,
// so this function uses the cached config from cfgManager.Config.
func HandleRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	deps Deps,
	config Config,
	serviceName string,
) error {
	workspaceCfg := cfgManager.Config

	if deps.Timer != nil {
		deps.Timer.NewStage()
	}

	return RunWithConfig(cmd, deps, config, workspaceCfg, serviceName)
}

// showTitle displays the title message for a lifecycle operation.
func showTitle(cmd *cobra.Command, emoji, content string) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout()) // Add newline before title for visual separation
	notify.WriteMessage(
		notify.Message{
			Type:    notify.TitleType,
			Content: content,
			Emoji:   emoji,
			Writer:  cmd.OutOrStdout(),
		},
	)
}

// RunWithConfig executes a lifecycle command using a pre-loaded workspace
// configuration. This function is useful when the configuration has already
// been loaded, avoiding the need to reload it.
//
// It performs the following steps:
//  1. Create the deployer for the configured hosting target using the factory
//  2. Execute the lifecycle action
//  3. Display success message with timing information
//
// Returns an error if deployer creation, service name resolution, or the
// action itself fails.
func RunWithConfig(
	cmd *cobra.Command,
	deps Deps,
	config Config,
	workspaceCfg *v1alpha1.Workspace,
	serviceName string,
) error {
	dep, err := deps.Factory.Create(cmd.Context(), workspaceCfg)
	if err != nil {
		return fmt.Errorf("failed to resolve deployer: %w", err)
	}

	if dep == nil {
		return ErrMissingDeployerDependency
	}

	if serviceName == "" {
		return ErrServiceNameRequired
	}

	return runWithDeployer(cmd, deps, config, dep, serviceName)
}

// runWithDeployer executes a lifecycle action using a resolved deployer
// instance. This is an internal helper that handles the user-facing messaging
// and action execution.
//
// It performs the following steps:
//  1. Display the lifecycle title
//  2. Display the activity message
//  3. Execute the lifecycle action
//  4. Display success message with timing information
//
// Returns an error if the action fails.
func runWithDeployer(
	cmd *cobra.Command,
	deps Deps,
	config Config,
	dep deployer.Deployer,
	serviceName string,
) error {
	showTitle(cmd, config.TitleEmoji, config.TitleContent)
	notify.WriteMessage(
		notify.Message{
			Type:    notify.ActivityType,
			Content: config.ActivityContent,
			Args:    []any{serviceName},
			Writer:  cmd.OutOrStdout(),
		},
	)

	err := config.Action(cmd.Context(), dep, serviceName)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrorMessagePrefix, err)
	}

	outputTimer := flags.MaybeTimer(cmd, deps.Timer)

	notify.WriteMessage(
		notify.Message{
			Type:    notify.SuccessType,
			Content: config.SuccessContent,
			Timer:   outputTimer,
			Writer:  cmd.OutOrStdout(),
		},
	)

	return nil
}
