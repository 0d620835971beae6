package service

import (
	"fmt"
	"io"
	"slices"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/lifecycle"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/spf13/cobra"
)

// NewListCmd creates the service list command.
func NewListCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scoring services",
		Long: `List recorded scoring service deployments and whether each service is
still running on the hosting target.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultRegistryRootFieldSelector(),
	}
	fieldSelectors = append(fieldSelectors, workspace.DefaultConnectionFieldSelectors()...)

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer,
		func(cobraCmd *cobra.Command, injector runtime.Injector) error {
			factory, err := runtime.ResolveDeployerFactory(injector)
			if err != nil {
				return err
			}

			return handleListRunE(cobraCmd, cfgManager, factory)
		},
	)

	return cmd
}

// handleListRunE prints all recorded service deployments merged with the live
// state of the hosting target. The config is loaded silently so the output
// stays machine friendly.
func handleListRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	factory deployer.Factory,
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

	records, err := reg.ListServices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	deployed := deployedServices(cmd, factory, cfg)

	displayServices(cmd.OutOrStdout(), records, deployed)

	return nil
}

// deployedServices queries the hosting target for the deployed service names.
// Target errors are reported as a warning and liveness is then omitted from
// the listing.
func deployedServices(
	cmd *cobra.Command,
	factory deployer.Factory,
	cfg *v1alpha1.Workspace,
) map[string]bool {
	dep, err := factory.Create(cmd.Context(), cfg)
	if err != nil || dep == nil {
		if err == nil {
			err = lifecycle.ErrMissingDeployerDependency
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to reach hosting target: %v\n", err)

		return nil
	}

	names, err := dep.List(cmd.Context())
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to list deployed services: %v\n", err)

		return nil
	}

	deployed := make(map[string]bool, len(names))
	for _, name := range names {
		deployed[name] = true
	}

	return deployed
}

// displayServices outputs one line per service. Recorded deployments come
// first, followed by services running on the target without a record. If
// neither side has services, displays "No services found.".
func displayServices(writer io.Writer, records []registry.Service, deployed map[string]bool) {
	if len(records) == 0 && len(deployed) == 0 {
		_, _ = fmt.Fprintln(writer, "No services found.")

		return
	}

	recorded := make(map[string]bool, len(records))

	for _, record := range records {
		recorded[record.Name] = true

		line := fmt.Sprintf("%s  %s  %s  %s", record.Name, record.Target, record.Image, record.Endpoint)
		if deployed != nil && !deployed[record.Name] {
			line += "  (not running)"
		}

		_, _ = fmt.Fprintln(writer, line)
	}

	unrecorded := make([]string, 0, len(deployed))

	for name := range deployed {
		if !recorded[name] {
			unrecorded = append(unrecorded, name)
		}
	}

	slices.Sort(unrecorded)

	for _, name := range unrecorded {
		_, _ = fmt.Fprintf(writer, "%s  (no record)\n", name)
	}
}
