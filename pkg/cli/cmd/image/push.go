package image

import (
	"fmt"
	"strings"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/flags"
	"github.com/devantler-tech/msail/pkg/client/docker"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/svc/imagebuilder"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// pushCredentials carries the remote registry target and optional credentials.
type pushCredentials struct {
	Registry string
	Username string
	Password string
}

// NewPushCmd creates the image push command.
func NewPushCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	var creds pushCredentials

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a scoring image to a remote registry",
		Long: `Push the built scoring image to a remote container registry so hosting
targets that cannot see the local daemon, such as Kubernetes, can pull it.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultNameFieldSelector(),
		workspace.DefaultTagFieldSelector(),
	}

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().StringVar(&creds.Registry, "registry", "",
		"Remote registry to push to, e.g. ghcr.io/acme (required)")
	cmd.Flags().StringVar(&creds.Username, "username", "",
		"Registry username for basic authentication")
	cmd.Flags().StringVar(&creds.Password, "password", "",
		"Registry password for basic authentication")

	if err := cmd.MarkFlagRequired("registry"); err != nil {
		panic(fmt.Sprintf("failed to mark registry flag as required: %v", err))
	}

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cobraCmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			clientFactory, err := runtime.ResolveDockerClientFactory(injector)
			if err != nil {
				return err
			}

			return handlePushRunE(cobraCmd, cfgManager, tmr, clientFactory, creds)
		},
	))

	return cmd
}

// handlePushRunE publishes the configured image to the remote registry.
func handlePushRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	clientFactory docker.ClientFactory,
	creds pushCredentials,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	localReference := cfg.Spec.Image.Name + ":" + cfg.Spec.Image.Tag
	remoteReference := strings.TrimSuffix(creds.Registry, "/") + "/" + localReference

	if tmr != nil {
		tmr.NewStage()
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Push image...",
		Emoji:   "📤",
		Writer:  cmd.OutOrStdout(),
	})
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "pushing image '%s'",
		Args:    []any{remoteReference},
		Writer:  cmd.OutOrStdout(),
	})

	builder, err := newBuilder(clientFactory)
	if err != nil {
		return err
	}

	err = builder.Push(cmd.Context(), imagebuilder.PushOptions{
		LocalReference:  localReference,
		RemoteReference: remoteReference,
		Username:        creds.Username,
		Password:        creds.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to push image: %w", err)
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "image '%s' pushed",
		Args:    []any{remoteReference},
		Timer:   outputTimer,
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}
