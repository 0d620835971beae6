package image

import (
	"fmt"
	"strings"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager/workspace"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/imagebuilder"
)

// openRegistry opens the model registry rooted at the configured registry root.
// The caller is responsible for closing the returned registry.
func openRegistry(cfg *v1alpha1.Workspace) (*registry.Registry, error) {
	reg, err := registry.Open(cfg.Spec.Registry.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open model registry: %w", err)
	}

	return reg, nil
}

// newBuilder creates an image builder from the Docker client factory.
func newBuilder(clientFactory docker.ClientFactory) (*imagebuilder.Builder, error) {
	apiClient, err := clientFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	builder, err := imagebuilder.NewBuilder(apiClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create image builder: %w", err)
	}

	return builder, nil
}

// registrySelectors returns the field selectors shared by image commands that
// only need the registry root.
func registrySelectors() []workspace.FieldSelector[v1alpha1.Workspace] {
	return []workspace.FieldSelector[v1alpha1.Workspace]{
		workspace.DefaultRegistryRootFieldSelector(),
	}
}

// normalizeReference appends the default tag to a reference without one.
func normalizeReference(reference string) string {
	if strings.Contains(reference, ":") {
		return reference
	}

	return reference + ":" + v1alpha1.DefaultImageTag
}
