package image

import (
	"fmt"
	"io"

	"github.com/devantler-tech/msail/pkg/client/docker"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/spf13/cobra"
)

// NewListCmd creates the image list command.
func NewListCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built scoring images",
		Long: `List recorded scoring image builds and whether each image is still
present in the local daemon.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := workspace.NewCommandConfigManager(cmd, registrySelectors())

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer,
		func(cobraCmd *cobra.Command, injector runtime.Injector) error {
			clientFactory, err := runtime.ResolveDockerClientFactory(injector)
			if err != nil {
				return err
			}

			return handleListRunE(cobraCmd, cfgManager, clientFactory)
		},
	)

	return cmd
}

// handleListRunE prints all recorded image builds. The config is loaded
// silently so the output stays machine friendly.
func handleListRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	clientFactory docker.ClientFactory,
) error {
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

	records, err := reg.ListImages(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	presence := imagePresence(cmd, clientFactory, records)

	displayImages(cmd.OutOrStdout(), records, presence)

	return nil
}

// imagePresence checks the daemon for each recorded image. Daemon errors are
// reported as a warning and presence is then omitted from the listing.
func imagePresence(
	cmd *cobra.Command,
	clientFactory docker.ClientFactory,
	records []registry.Image,
) map[string]bool {
	if len(records) == 0 {
		return nil
	}

	builder, err := newBuilder(clientFactory)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to reach docker daemon: %v\n", err)

		return nil
	}

	presence := make(map[string]bool, len(records))

	for _, record := range records {
		exists, err := builder.ImageExists(cmd.Context(), record.Reference())
		if err != nil {
			_, _ = fmt.Fprintf(
				cmd.ErrOrStderr(),
				"Warning: failed to inspect image %s: %v\n",
				record.Reference(),
				err,
			)

			return nil
		}

		presence[record.Reference()] = exists
	}

	return presence
}

// displayImages outputs one line per recorded image build. If no builds are
// recorded, displays "No images found.".
func displayImages(writer io.Writer, records []registry.Image, presence map[string]bool) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(writer, "No images found.")

		return
	}

	for _, record := range records {
		line := fmt.Sprintf(
			"%s  model %s:%d  %s",
			record.Reference(),
			record.ModelName,
			record.ModelVersion,
			record.CreatedAt.Format("2006-01-02 15:04"),
		)

		if presence != nil && !presence[record.Reference()] {
			line += "  (missing from daemon)"
		}

		_, _ = fmt.Fprintln(writer, line)
	}
}
