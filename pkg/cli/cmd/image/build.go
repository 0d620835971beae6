package image

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/cli/flags"
	"github.com/devantler-tech/msail/pkg/client/docker"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	yamlmarshaller "github.com/devantler-tech/msail/pkg/fsutil/marshaller/yaml"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/imagebuilder"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewBuildCmd creates the image build command.
func NewBuildCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a scoring image",
		Long: `Build a containerized scoring image from the configured model, scoring
script, and dependency descriptor. The model must be registered first.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	fieldSelectors := []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultNameFieldSelector(),
		workspace.DefaultRegistryRootFieldSelector(),
	}
	fieldSelectors = append(fieldSelectors, workspace.DefaultImageFieldSelectors()...)

	cfgManager := workspace.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cobraCmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			clientFactory, err := runtime.ResolveDockerClientFactory(injector)
			if err != nil {
				return err
			}

			return handleBuildRunE(cobraCmd, cfgManager, tmr, clientFactory)
		},
	))

	return cmd
}

// handleBuildRunE resolves the configured model in the registry, builds the
// scoring image, and records the build.
func handleBuildRunE(
	cmd *cobra.Command,
	cfgManager *workspace.ConfigManager,
	tmr timer.Timer,
	clientFactory docker.ClientFactory,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}

	modelName, modelVersion, err := v1alpha1.ParseModelRef(cfg.Spec.Image.Model)
	if err != nil {
		return fmt.Errorf("failed to resolve model reference: %w", err)
	}

	if tmr != nil {
		tmr.NewStage()
	}

	reference := cfg.Spec.Image.Name + ":" + cfg.Spec.Image.Tag

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Build image...",
		Emoji:   "📦",
		Writer:  cmd.OutOrStdout(),
	})
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "building image '%s'",
		Args:    []any{reference},
		Writer:  cmd.OutOrStdout(),
	})

	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reg.Close()
	}()

	model, err := reg.GetModel(cmd.Context(), modelName, modelVersion)
	if err != nil {
		return fmt.Errorf("failed to resolve model: %w", err)
	}

	opts := imagebuilder.BuildOptions{
		Name:         cfg.Spec.Image.Name,
		Tag:          cfg.Spec.Image.Tag,
		BaseImage:    cfg.Spec.Image.Base,
		ScriptPath:   cfg.Spec.Image.Script,
		ModelPath:    model.Path,
		ModelName:    model.Name,
		ModelVersion: model.Version,
		Port:         cfg.Spec.Deploy.Port,
	}

	err = attachDependencies(&opts, cfg.Spec.Image.Dependencies)
	if err != nil {
		return err
	}

	builder, err := newBuilder(clientFactory)
	if err != nil {
		return err
	}

	builtReference, err := builder.Build(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}

	err = reg.PutImage(cmd.Context(), registry.Image{
		Name:         opts.Name,
		Tag:          cfg.Spec.Image.Tag,
		ModelName:    model.Name,
		ModelVersion: model.Version,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record image build: %w", err)
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "image '%s' built",
		Args:    []any{builtReference},
		Timer:   outputTimer,
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}

// attachDependencies loads the dependency descriptor when it exists. A missing
// descriptor is not an error, the image is then built without extra packages.
func attachDependencies(opts *imagebuilder.BuildOptions, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to read dependency descriptor: %w", err)
	}

	dependencies := v1alpha1.NewDependencies()

	err = yamlmarshaller.NewMarshaller[v1alpha1.Dependencies]().Unmarshal(data, dependencies)
	if err != nil {
		return fmt.Errorf("failed to parse dependency descriptor: %w", err)
	}

	opts.DependenciesPath = path
	opts.Dependencies = *dependencies

	return nil
}
