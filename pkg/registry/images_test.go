package registry_test

import (
	"testing"
	"time"

	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_Reference(t *testing.T) {
	t.Parallel()

	image := registry.Image{Name: "msail-churn", Tag: "latest"}

	assert.Equal(t, "msail-churn:latest", image.Reference())
}

func TestPutImage_GetImage(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	image := registry.Image{
		Name:         "msail-churn",
		Tag:          "v3",
		ModelName:    "churn",
		ModelVersion: 3,
		CreatedAt:    time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC),
	}

	require.NoError(t, reg.PutImage(t.Context(), image))

	stored, err := reg.GetImage(t.Context(), "msail-churn:v3")

	require.NoError(t, err)
	assert.Equal(t, image, stored)
}

func TestGetImage_NotFound(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	_, err := reg.GetImage(t.Context(), "unknown:latest")

	require.ErrorIs(t, err, registry.ErrImageNotFound)
}

func TestListImages(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	for _, image := range []registry.Image{
		{Name: "msail-forecast", Tag: "latest"},
		{Name: "msail-churn", Tag: "latest"},
		{Name: "msail-churn", Tag: "v2"},
	} {
		require.NoError(t, reg.PutImage(t.Context(), image))
	}

	images, err := reg.ListImages(t.Context())

	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "msail-churn:latest", images[0].Reference())
	assert.Equal(t, "msail-churn:v2", images[1].Reference())
	assert.Equal(t, "msail-forecast:latest", images[2].Reference())
}

func TestRemoveImage(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	require.NoError(t, reg.PutImage(t.Context(), registry.Image{Name: "msail-churn", Tag: "latest"}))
	require.NoError(t, reg.RemoveImage(t.Context(), "msail-churn:latest"))

	_, err := reg.GetImage(t.Context(), "msail-churn:latest")

	require.ErrorIs(t, err, registry.ErrImageNotFound)
}

func TestRemoveImage_NotFound(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	err := reg.RemoveImage(t.Context(), "unknown:latest")

	require.ErrorIs(t, err, registry.ErrImageNotFound)
}
