package registry_test

import (
	"testing"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutService_GetService(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	created := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)

	service := registry.Service{
		Name:        "churn-svc",
		Target:      v1alpha1.TargetContainerInstance,
		Image:       "msail-churn:latest",
		Endpoint:    "http://localhost:8080/score",
		AuthEnabled: true,
		Keys:        registry.Keys{Primary: "primary-key", Secondary: "secondary-key"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	require.NoError(t, reg.PutService(t.Context(), service))

	stored, err := reg.GetService(t.Context(), "churn-svc")

	require.NoError(t, err)
	assert.Equal(t, service, stored)
}

func TestPutService_Replaces(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	service := registry.Service{Name: "churn-svc", Image: "msail-churn:1"}
	require.NoError(t, reg.PutService(t.Context(), service))

	service.Image = "msail-churn:2"
	require.NoError(t, reg.PutService(t.Context(), service))

	stored, err := reg.GetService(t.Context(), "churn-svc")

	require.NoError(t, err)
	assert.Equal(t, "msail-churn:2", stored.Image)

	services, err := reg.ListServices(t.Context())
	require.NoError(t, err)
	assert.Len(t, services, 1)
}

func TestGetService_NotFound(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	_, err := reg.GetService(t.Context(), "unknown")

	require.ErrorIs(t, err, registry.ErrServiceNotFound)
}

func TestListServices(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	for _, name := range []string{"forecast-svc", "churn-svc"} {
		require.NoError(t, reg.PutService(t.Context(), registry.Service{Name: name}))
	}

	services, err := reg.ListServices(t.Context())

	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "churn-svc", services[0].Name)
	assert.Equal(t, "forecast-svc", services[1].Name)
}

func TestRemoveService(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	require.NoError(t, reg.PutService(t.Context(), registry.Service{Name: "churn-svc"}))
	require.NoError(t, reg.RemoveService(t.Context(), "churn-svc"))

	_, err := reg.GetService(t.Context(), "churn-svc")

	require.ErrorIs(t, err, registry.ErrServiceNotFound)
}

func TestRemoveService_NotFound(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	err := reg.RemoveService(t.Context(), "unknown")

	require.ErrorIs(t, err, registry.ErrServiceNotFound)
}
