package docker

import (
	"context"
	"io"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a testify mock of the Docker API client covering the calls
// the service manager issues. The embedded interface satisfies the rest of
// client.APIClient; unexpected calls panic.
type MockAPIClient struct {
	mock.Mock
	client.APIClient
}

// NewMockAPIClient creates a MockAPIClient bound to the test lifecycle.
func NewMockAPIClient(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockAPIClient {
	mockClient := &MockAPIClient{}
	mockClient.Mock.Test(t)

	t.Cleanup(func() { mockClient.AssertExpectations(t) })

	return mockClient
}

// EXPECT returns an expecter for registering expected calls.
func (m *MockAPIClient) EXPECT() *MockAPIClientExpecter {
	return &MockAPIClientExpecter{mock: &m.Mock}
}

// MockAPIClientExpecter registers expectations on the mock.
type MockAPIClientExpecter struct {
	mock *mock.Mock
}

func (m *MockAPIClient) ContainerList(
	ctx context.Context,
	options container.ListOptions,
) ([]container.Summary, error) {
	args := m.Called(ctx, options)

	var containers []container.Summary
	if args.Get(0) != nil {
		containers, _ = args.Get(0).([]container.Summary)
	}

	return containers, args.Error(1)
}

func (e *MockAPIClientExpecter) ContainerList(ctx any, options any) *mock.Call {
	return e.mock.On("ContainerList", ctx, options)
}

func (m *MockAPIClient) ContainerCreate(
	ctx context.Context,
	config *container.Config,
	hostConfig *container.HostConfig,
	networkingConfig *network.NetworkingConfig,
	platform *ocispec.Platform,
	containerName string,
) (container.CreateResponse, error) {
	args := m.Called(ctx, config, hostConfig, networkingConfig, platform, containerName)

	response, _ := args.Get(0).(container.CreateResponse)

	return response, args.Error(1)
}

func (e *MockAPIClientExpecter) ContainerCreate(
	ctx, config, hostConfig, networkingConfig, platform, containerName any,
) *mock.Call {
	return e.mock.On(
		"ContainerCreate", ctx, config, hostConfig, networkingConfig, platform, containerName,
	)
}

func (m *MockAPIClient) ContainerStart(
	ctx context.Context,
	containerID string,
	options container.StartOptions,
) error {
	args := m.Called(ctx, containerID, options)

	return args.Error(0)
}

func (e *MockAPIClientExpecter) ContainerStart(ctx, containerID, options any) *mock.Call {
	return e.mock.On("ContainerStart", ctx, containerID, options)
}

func (m *MockAPIClient) ContainerStop(
	ctx context.Context,
	containerID string,
	options container.StopOptions,
) error {
	args := m.Called(ctx, containerID, options)

	return args.Error(0)
}

func (e *MockAPIClientExpecter) ContainerStop(ctx, containerID, options any) *mock.Call {
	return e.mock.On("ContainerStop", ctx, containerID, options)
}

func (m *MockAPIClient) ContainerRemove(
	ctx context.Context,
	containerID string,
	options container.RemoveOptions,
) error {
	args := m.Called(ctx, containerID, options)

	return args.Error(0)
}

func (e *MockAPIClientExpecter) ContainerRemove(ctx, containerID, options any) *mock.Call {
	return e.mock.On("ContainerRemove", ctx, containerID, options)
}

func (m *MockAPIClient) ImageInspect(
	ctx context.Context,
	imageID string,
	opts ...client.ImageInspectOption,
) (image.InspectResponse, error) {
	args := m.Called(ctx, imageID)

	response, _ := args.Get(0).(image.InspectResponse)

	return response, args.Error(1)
}

func (e *MockAPIClientExpecter) ImageInspect(ctx, imageID any) *mock.Call {
	return e.mock.On("ImageInspect", ctx, imageID)
}

func (m *MockAPIClient) ImagePull(
	ctx context.Context,
	refStr string,
	options image.PullOptions,
) (io.ReadCloser, error) {
	args := m.Called(ctx, refStr, options)

	var reader io.ReadCloser
	if args.Get(0) != nil {
		reader, _ = args.Get(0).(io.ReadCloser)
	}

	return reader, args.Error(1)
}

func (e *MockAPIClientExpecter) ImagePull(ctx, refStr, options any) *mock.Call {
	return e.mock.On("ImagePull", ctx, refStr, options)
}

func (m *MockAPIClient) ImageBuild(
	ctx context.Context,
	buildContext io.Reader,
	options build.ImageBuildOptions,
) (build.ImageBuildResponse, error) {
	args := m.Called(ctx, buildContext, options)

	var response build.ImageBuildResponse
	if args.Get(0) != nil {
		response, _ = args.Get(0).(build.ImageBuildResponse)
	}

	return response, args.Error(1)
}

func (e *MockAPIClientExpecter) ImageBuild(ctx, buildContext, options any) *mock.Call {
	return e.mock.On("ImageBuild", ctx, buildContext, options)
}

func (m *MockAPIClient) ImageList(
	ctx context.Context,
	options image.ListOptions,
) ([]image.Summary, error) {
	args := m.Called(ctx, options)

	var summaries []image.Summary
	if args.Get(0) != nil {
		summaries, _ = args.Get(0).([]image.Summary)
	}

	return summaries, args.Error(1)
}

func (e *MockAPIClientExpecter) ImageList(ctx, options any) *mock.Call {
	return e.mock.On("ImageList", ctx, options)
}

func (m *MockAPIClient) ImageRemove(
	ctx context.Context,
	imageID string,
	options image.RemoveOptions,
) ([]image.DeleteResponse, error) {
	args := m.Called(ctx, imageID, options)

	var responses []image.DeleteResponse
	if args.Get(0) != nil {
		responses, _ = args.Get(0).([]image.DeleteResponse)
	}

	return responses, args.Error(1)
}

func (e *MockAPIClientExpecter) ImageRemove(ctx, imageID, options any) *mock.Call {
	return e.mock.On("ImageRemove", ctx, imageID, options)
}
