package imagebuilder

import (
	"context"
	"fmt"
	"io"
	"strconv"

	v1alpha1 "github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"golang.org/x/sync/errgroup"
)

// Image labels applied to every built scoring image.
const (
	// ImageLabelKey marks an image as a scoring image and carries its name.
	ImageLabelKey = "io.msail.image"
	// ModelLabelKey carries the "name:version" of the baked model.
	ModelLabelKey = "io.msail.model"
)

// Builder builds scoring images against the Docker daemon and manages their
// lifecycle.
type Builder struct {
	client client.APIClient
}

// NewBuilder creates a Builder backed by the given Docker API client.
func NewBuilder(apiClient client.APIClient) (*Builder, error) {
	if apiClient == nil {
		return nil, docker.ErrAPIClientNil
	}

	return &Builder{client: apiClient}, nil
}

// BuildOptions configures a scoring image build.
type BuildOptions struct {
	// Name is the image repository name.
	Name string
	// Tag is the image tag. Empty defaults to "latest".
	Tag string
	// BaseImage is the runtime image the scoring image builds on.
	BaseImage string
	// ScriptPath is the host path of the scoring script.
	ScriptPath string
	// ModelPath is the host path of the registered model artifact.
	ModelPath string
	// DependenciesPath is the host path of the dependency descriptor.
	// Empty skips baking the descriptor into the image.
	DependenciesPath string
	// Dependencies is the parsed dependency descriptor.
	Dependencies v1alpha1.Dependencies
	// ModelName and ModelVersion identify the baked model for image labels.
	ModelName    string
	ModelVersion int
	// Port is the port the scoring endpoint exposes. Zero defaults to the
	// workspace default port.
	Port int32
}

// Validate checks the options and fills defaults.
func (o *BuildOptions) Validate() error {
	if o.Name == "" {
		return ErrImageNameEmpty
	}

	if o.BaseImage == "" {
		return ErrBaseImageEmpty
	}

	if o.ScriptPath == "" {
		return ErrScriptPathEmpty
	}

	if o.ModelPath == "" {
		return ErrModelPathEmpty
	}

	if o.Tag == "" {
		o.Tag = v1alpha1.DefaultImageTag
	}

	if o.Port <= 0 {
		o.Port = v1alpha1.DefaultPort
	}

	return nil
}

// Reference returns the local image reference the build produces.
func (o BuildOptions) Reference() string {
	tag := o.Tag
	if tag == "" {
		tag = v1alpha1.DefaultImageTag
	}

	return o.Name + ":" + tag
}

// Build renders the Dockerfile, streams the build context to the daemon, and
// builds the scoring image. It returns the local image reference on success.
//
// Build failures reported inside the daemon's response stream are surfaced as
// ErrImageBuildFailed with the failing step's message.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (string, error) {
	err := opts.Validate()
	if err != nil {
		return "", err
	}

	reference := opts.Reference()
	dockerfile := []byte(RenderDockerfile(opts))
	files := buildContextFiles(opts)

	pipeReader, pipeWriter := io.Pipe()

	group := new(errgroup.Group)
	group.Go(func() error {
		writeErr := writeBuildContext(pipeWriter, dockerfile, files)

		// Closing with nil delivers EOF to the daemon's reader.
		_ = pipeWriter.CloseWithError(writeErr)

		return writeErr
	})

	response, err := b.client.ImageBuild(ctx, pipeReader, build.ImageBuildOptions{
		Tags:        []string{reference},
		Dockerfile:  dockerfileName,
		Remove:      true,
		ForceRemove: true,
		Labels: map[string]string{
			ImageLabelKey: opts.Name,
			ModelLabelKey: opts.ModelName + ":" + strconv.Itoa(opts.ModelVersion),
		},
	})
	if err != nil {
		// Unblock the context writer before collecting it.
		_ = pipeReader.CloseWithError(err)
		_ = group.Wait()

		return "", fmt.Errorf("failed to build image %s: %w", reference, err)
	}

	defer func() { _ = response.Body.Close() }()

	// Build errors arrive inside the response stream, not as a transport error.
	err = jsonmessage.DisplayJSONMessagesStream(response.Body, io.Discard, 0, false, nil)
	if err != nil {
		_ = group.Wait()

		return "", fmt.Errorf("%w: %s", ErrImageBuildFailed, err)
	}

	err = group.Wait()
	if err != nil {
		return "", fmt.Errorf("failed to send build context: %w", err)
	}

	return reference, nil
}

// buildContextFiles maps the scoring inputs to their canonical context names.
func buildContextFiles(opts BuildOptions) []contextFile {
	files := []contextFile{
		{Name: scriptFileName, Path: opts.ScriptPath},
		{Name: modelFileName, Path: opts.ModelPath},
	}

	if opts.DependenciesPath != "" {
		files = append(files, contextFile{Name: dependenciesFileName, Path: opts.DependenciesPath})
	}

	return files
}
