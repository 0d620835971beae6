package image

import (
	"errors"
	"fmt"

	"github.com/devantler-tech/msail/pkg/cli/flags"
	"github.com/devantler-tech/msail/pkg/client/docker"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/imagebuilder"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the image remove command.
func NewRemoveCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <reference>",
		Short: "Remove a scoring image",
		Long: `Remove a scoring image from the local daemon and drop its build record.
A reference without a tag defaults to the 'latest' tag.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cfgManager := workspace.NewCommandConfigManager(cmd, registrySelectors())

	cmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		handler := runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
			func(cobraCmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
				clientFactory, err := runtime.ResolveDockerClientFactory(injector)
				if err != nil {
					return err
				}

				return handleRemoveRunE(cobraCmd, cfgManager, tmr, clientFactory, args[0])
			},
		))

		return handler(cobraCmd, args)
	}

	return cmd
}

// handleRemoveRunE removes the image from the daemon and the build record from
// the registry. The removal succeeds as long as either side held the image.
func handleRemoveRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	clientFactory docker.ClientFactory,
	reference string,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	reference = normalizeReference(reference)

	if tmr != nil {
		tmr.NewStage()
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Remove image...",
		Emoji:   "🗑️",
		Writer:  cmd.OutOrStdout(),
	})
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "removing image '%s'",
		Args:    []any{reference},
		Writer:  cmd.OutOrStdout(),
	})

	builder, err := newBuilder(clientFactory)
	if err != nil {
		return err
	}

	engineErr := builder.RemoveImage(cmd.Context(), reference)
	if engineErr != nil && !errors.Is(engineErr, imagebuilder.ErrImageNotFound) {
		return fmt.Errorf("failed to remove image: %w", engineErr)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	recordErr := reg.RemoveImage(cmd.Context(), reference)
	if recordErr != nil && !errors.Is(recordErr, registry.ErrImageNotFound) {
		return fmt.Errorf("failed to remove image record: %w", recordErr)
	}

	if engineErr != nil && recordErr != nil {
		return fmt.Errorf("%w: %s", registry.ErrImageNotFound, reference)
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "image removed",
		Timer:   outputTimer,
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}
