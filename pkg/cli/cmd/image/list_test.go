package image_test

import (
	"testing"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	imagepkg "github.com/devantler-tech/msail/pkg/cli/cmd/image"
	"github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestList_NoImages(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mockClient := docker.NewMockAPIClient(t)

	cmd := imagepkg.NewListCmd(newImageTestRuntimeContainer(t, mockClient))

	out, err := runCmd(t, cmd, "--registry-root", root)
	require.NoError(t, err)
	require.Contains(t, out, "No images found.")
}

func TestList_ShowsPresentImage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	putImageRecord(t, root, registry.Image{
		Name:         "churn-svc",
		Tag:          "latest",
		ModelName:    "demo",
		ModelVersion: 1,
		CreatedAt:    time.Now().UTC(),
	})

	mockClient := docker.NewMockAPIClient(t)
	mockClient.EXPECT().
		ImageInspect(mock.Anything, "churn-svc:latest").
		Return(image.InspectResponse{}, nil)

	cmd := imagepkg.NewListCmd(newImageTestRuntimeContainer(t, mockClient))

	out, err := runCmd(t, cmd, "--registry-root", root)
	require.NoError(t, err)
	require.Contains(t, out, "churn-svc:latest  model demo:1")
	require.NotContains(t, out, "(missing from daemon)")
}

func TestList_FlagsImageMissingFromDaemon(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	putImageRecord(t, root, registry.Image{
		Name:         "churn-svc",
		Tag:          "latest",
		ModelName:    "demo",
		ModelVersion: 1,
		CreatedAt:    time.Now().UTC(),
	})

	mockClient := docker.NewMockAPIClient(t)
	mockClient.EXPECT().
		ImageInspect(mock.Anything, "churn-svc:latest").
		Return(image.InspectResponse{}, cerrdefs.ErrNotFound)

	cmd := imagepkg.NewListCmd(newImageTestRuntimeContainer(t, mockClient))

	out, err := runCmd(t, cmd, "--registry-root", root)
	require.NoError(t, err)
	require.Contains(t, out, "churn-svc:latest  model demo:1")
	require.Contains(t, out, "(missing from daemon)")
}
