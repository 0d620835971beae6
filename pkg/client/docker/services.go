package docker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Service container error definitions.
var (
	// ErrServiceContainerNotFound is returned when a service container is not found.
	ErrServiceContainerNotFound = errors.New("service container not found")
	// ErrServiceContainerAlreadyExists is returned when creating a service container that already exists.
	ErrServiceContainerAlreadyExists = errors.New("service container already exists")
	// ErrServicePortNotFound is returned when the service host port cannot be determined.
	ErrServicePortNotFound = errors.New("service port not found")
	// ErrServiceNotReady is returned when a service fails to become ready within the timeout.
	ErrServiceNotReady = errors.New("service not ready within timeout")
	// ErrServiceUnexpectedStatus is returned when the service returns an unexpected HTTP status.
	ErrServiceUnexpectedStatus = errors.New("service returned unexpected status")
	// ErrServiceHealthCheckCancelled is returned when the health check is cancelled via context.
	ErrServiceHealthCheckCancelled = errors.New("service health check cancelled")
)

const (
	// Service labeling and identification.

	// ServiceLabelKey marks containers as msail scoring services.
	ServiceLabelKey = "io.msail.service"

	// Service container configuration.

	// ServiceRestartPolicy defines the container restart policy.
	ServiceRestartPolicy = "unless-stopped"
	// ServiceHostIP is the host IP address to bind service ports to.
	ServiceHostIP = "127.0.0.1"

	// Service health check configuration.

	// ServiceReadyTimeout is the maximum time to wait for a service to become ready.
	// Model loading happens at container start, so this is generous.
	ServiceReadyTimeout = 60 * time.Second
	// ServiceReadyPollInterval is the interval between service health checks.
	ServiceReadyPollInterval = 500 * time.Millisecond
	// ServiceHTTPTimeout is the timeout for individual HTTP health check requests.
	ServiceHTTPTimeout = 2 * time.Second

	// Resource sizing.

	// nanoCPUs converts cores to the NanoCPUs unit the engine expects.
	nanoCPUs = 1_000_000_000
	// bytesPerGB converts gigabytes to bytes.
	bytesPerGB = 1 << 30
)

// ServiceManager manages scoring service containers on a container engine.
type ServiceManager struct {
	client client.APIClient
}

// NewServiceManager creates a new ServiceManager.
func NewServiceManager(apiClient client.APIClient) (*ServiceManager, error) {
	if apiClient == nil {
		return nil, ErrAPIClientNil
	}

	return &ServiceManager{
		client: apiClient,
	}, nil
}

// ServiceConfig holds configuration for creating a service container.
type ServiceConfig struct {
	// Name is the service name and the value of the service label.
	Name string
	// DNSLabel names the container on the engine. Falls back to Name.
	DNSLabel string
	// Image is the scoring image reference to run.
	Image string
	// Port is the container port the scoring server listens on.
	Port int
	// HostPort is the host port to bind. Falls back to Port when zero.
	HostPort int
	// CPU is the core allocation for the container.
	CPU float64
	// MemoryGB is the memory allocation in gigabytes.
	MemoryGB float64
	// Env is extra environment for the scoring server (auth keys, TLS paths).
	Env []string
	// Binds are host bind mounts in engine "host:container[:mode]" syntax,
	// used to hand TLS material to the scoring server.
	Binds []string
}

// CreateService creates and starts a service container with the given
// configuration. If a container with the name already exists it returns
// ErrServiceContainerAlreadyExists; updates go through delete and recreate.
func (sm *ServiceManager) CreateService(ctx context.Context, config ServiceConfig) error {
	exists, err := sm.ServiceExists(ctx, config.Name)
	if err != nil {
		return fmt.Errorf("failed to check if service exists: %w", err)
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrServiceContainerAlreadyExists, config.Name)
	}

	err = sm.ensureImage(ctx, config.Image)
	if err != nil {
		return fmt.Errorf("failed to ensure service image: %w", err)
	}

	return sm.createAndStartContainer(ctx, config)
}

// DeleteService stops and removes a service container.
func (sm *ServiceManager) DeleteService(ctx context.Context, name string) error {
	containers, err := sm.listServiceContainers(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to list service containers: %w", err)
	}

	if len(containers) == 0 {
		return fmt.Errorf("%w: %s", ErrServiceContainerNotFound, name)
	}

	serviceContainer := containers[0]

	err = sm.stopServiceContainer(ctx, serviceContainer)
	if err != nil {
		return err
	}

	err = sm.client.ContainerRemove(ctx, serviceContainer.ID, container.RemoveOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove service container: %w", err)
	}

	return nil
}

// ServiceExists checks if a service container with the given name exists.
func (sm *ServiceManager) ServiceExists(ctx context.Context, name string) (bool, error) {
	containers, err := sm.listServiceContainers(ctx, name)
	if err != nil {
		return false, err
	}

	return len(containers) > 0, nil
}

// IsServiceRunning checks if a service container is in the running state.
func (sm *ServiceManager) IsServiceRunning(ctx context.Context, name string) (bool, error) {
	containers, err := sm.listServiceContainers(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to list service containers: %w", err)
	}

	if len(containers) == 0 {
		return false, nil
	}

	return strings.EqualFold(containers[0].State, "running"), nil
}

// ListServices returns the names of all msail service containers.
func (sm *ServiceManager) ListServices(ctx context.Context) ([]string, error) {
	containers, err := sm.listAllServiceContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list service containers: %w", err)
	}

	services := make([]string, 0, len(containers))

	seen := make(map[string]struct{}, len(containers))
	for _, c := range containers {
		name := c.Labels[ServiceLabelKey]
		if name == "" {
			for _, rawName := range c.Names {
				trimmed := strings.TrimPrefix(rawName, "/")
				if trimmed != "" {
					name = trimmed

					break
				}
			}
		}

		if name == "" {
			continue
		}

		if _, exists := seen[name]; exists {
			continue
		}

		seen[name] = struct{}{}
		services = append(services, name)
	}

	return services, nil
}

// GetServicePort returns the host port bound to the given container port.
func (sm *ServiceManager) GetServicePort(
	ctx context.Context,
	name string,
	containerPort int,
) (int, error) {
	containers, err := sm.listServiceContainers(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to list service containers: %w", err)
	}

	if len(containers) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrServiceContainerNotFound, name)
	}

	for _, port := range containers[0].Ports {
		if int(port.PrivatePort) == containerPort && port.PublicPort != 0 {
			return int(port.PublicPort), nil
		}
	}

	return 0, ErrServicePortNotFound
}

// WaitForServiceReady waits for a service to answer health checks on its host port.
func (sm *ServiceManager) WaitForServiceReady(
	ctx context.Context,
	name string,
	containerPort int,
) error {
	return sm.WaitForServiceReadyWithTimeout(ctx, name, containerPort, ServiceReadyTimeout)
}

// WaitForServiceReadyWithTimeout waits for a service with a custom timeout.
func (sm *ServiceManager) WaitForServiceReadyWithTimeout(
	ctx context.Context,
	name string,
	containerPort int,
	timeout time.Duration,
) error {
	return sm.waitForServiceReady(ctx, name, containerPort, "http", timeout)
}

// WaitForServiceReadyTLS waits for a service that serves its health endpoint
// over TLS. The certificate is not verified; local scoring services present
// operator-supplied material the host has no trust chain for.
func (sm *ServiceManager) WaitForServiceReadyTLS(
	ctx context.Context,
	name string,
	containerPort int,
	timeout time.Duration,
) error {
	return sm.waitForServiceReady(ctx, name, containerPort, "https", timeout)
}

func (sm *ServiceManager) waitForServiceReady(
	ctx context.Context,
	name string,
	containerPort int,
	scheme string,
	timeout time.Duration,
) error {
	checkURL, err := sm.prepareHealthCheck(ctx, name, containerPort, scheme)
	if err != nil {
		return err
	}

	return sm.pollUntilReady(ctx, name, checkURL, scheme, timeout)
}

// prepareHealthCheck validates the service and returns the health check URL.
func (sm *ServiceManager) prepareHealthCheck(
	ctx context.Context,
	name string,
	containerPort int,
	scheme string,
) (string, error) {
	running, err := sm.IsServiceRunning(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to check if service %s is running: %w", name, err)
	}

	if !running {
		return "", fmt.Errorf("service %s is not running: %w", name, ErrServiceContainerNotFound)
	}

	port, portErr := sm.GetServicePort(ctx, name, containerPort)
	if portErr != nil {
		return "", fmt.Errorf("failed to get service port: %w", portErr)
	}

	checkAddr := net.JoinHostPort(ServiceHostIP, strconv.Itoa(port))

	return fmt.Sprintf("%s://%s/health", scheme, checkAddr), nil
}

// pollUntilReady polls the service health endpoint until it responds or timeout.
func (sm *ServiceManager) pollUntilReady(
	ctx context.Context,
	name string,
	checkURL string,
	scheme string,
	timeout time.Duration,
) error {
	httpClient := &http.Client{Timeout: ServiceHTTPTimeout}
	if scheme == "https" {
		httpClient.Transport = &http.Transport{
			//nolint:gosec // health checks do not authenticate the endpoint
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(ServiceReadyPollInterval)

	defer ticker.Stop()

	var lastErr error

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrServiceHealthCheckCancelled, ctx.Err())
		case <-ticker.C:
			if time.Now().After(deadline) {
				return sm.buildTimeoutError(name, lastErr)
			}

			ready, err := sm.checkServiceHealth(ctx, httpClient, checkURL)
			if err != nil {
				lastErr = err

				continue
			}

			if ready {
				return nil
			}
		}
	}
}

// checkServiceHealth performs a single health check request.
// Returns (true, nil) if ready, (false, error) if not ready yet.
func (sm *ServiceManager) checkServiceHealth(
	ctx context.Context,
	httpClient *http.Client,
	checkURL string,
) (bool, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if reqErr != nil {
		return false, fmt.Errorf("failed to create health check request: %w", reqErr)
	}

	resp, respErr := httpClient.Do(req)
	if respErr != nil {
		return false, fmt.Errorf("health check request failed: %w", respErr)
	}

	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return true, nil
	}

	return false, fmt.Errorf("%w: %d", ErrServiceUnexpectedStatus, resp.StatusCode)
}

// buildTimeoutError creates the appropriate timeout error with optional last error context.
func (sm *ServiceManager) buildTimeoutError(name string, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%w: %s (last error: %w)", ErrServiceNotReady, name, lastErr)
	}

	return fmt.Errorf("%w: %s", ErrServiceNotReady, name)
}

// createAndStartContainer creates and starts a service container.
func (sm *ServiceManager) createAndStartContainer(
	ctx context.Context,
	config ServiceConfig,
) error {
	containerConfig := sm.buildContainerConfig(config)
	hostConfig := sm.buildHostConfig(config)

	containerName := config.DNSLabel
	if containerName == "" {
		containerName = config.Name
	}

	resp, err := sm.client.ContainerCreate(
		ctx,
		containerConfig,
		hostConfig,
		nil,
		nil,
		containerName,
	)
	if err != nil {
		return fmt.Errorf("failed to create service container: %w", err)
	}

	err = sm.client.ContainerStart(ctx, resp.ID, container.StartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start service container: %w", err)
	}

	return nil
}

// Container management helpers.

// listServiceContainers lists all containers matching the given service name.
// The service label is the lookup key so the container name is free to carry
// the DNS label.
func (sm *ServiceManager) listServiceContainers(
	ctx context.Context,
	name string,
) ([]container.Summary, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("%s=%s", ServiceLabelKey, name))

	containers, err := sm.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list service containers: %w", err)
	}

	return containers, nil
}

// listAllServiceContainers lists all msail-managed service containers.
func (sm *ServiceManager) listAllServiceContainers(
	ctx context.Context,
) ([]container.Summary, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", ServiceLabelKey)

	containers, err := sm.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list all service containers: %w", err)
	}

	return containers, nil
}

// ensureImage pulls the service image if not already present locally.
func (sm *ServiceManager) ensureImage(ctx context.Context, reference string) error {
	_, err := sm.client.ImageInspect(ctx, reference)
	if err == nil {
		return nil
	}

	reader, err := sm.client.ImagePull(ctx, reference, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull service image: %w", err)
	}

	_, err = io.Copy(io.Discard, reader)
	closeErr := reader.Close()

	if err != nil {
		return fmt.Errorf("failed to read image pull output: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close image pull reader: %w", closeErr)
	}

	return nil
}

// stopServiceContainer stops a service container if it's running.
func (sm *ServiceManager) stopServiceContainer(
	ctx context.Context,
	serviceContainer container.Summary,
) error {
	if !strings.EqualFold(serviceContainer.State, "running") {
		return nil
	}

	err := sm.client.ContainerStop(ctx, serviceContainer.ID, container.StopOptions{})
	if err != nil {
		return fmt.Errorf("failed to stop service container: %w", err)
	}

	return nil
}

// Configuration builders.

// buildContainerConfig builds the container configuration for a service.
func (sm *ServiceManager) buildContainerConfig(config ServiceConfig) *container.Config {
	labels := map[string]string{}
	if config.Name != "" {
		labels[ServiceLabelKey] = config.Name
	}

	return &container.Config{
		Image: config.Image,
		ExposedPorts: nat.PortSet{
			containerPort(config.Port): struct{}{},
		},
		Labels: labels,
		Env:    config.Env,
	}
}

// buildHostConfig builds the host configuration including port bindings and resources.
func (sm *ServiceManager) buildHostConfig(config ServiceConfig) *container.HostConfig {
	hostPort := config.HostPort
	if hostPort == 0 {
		hostPort = config.Port
	}

	portBindings := nat.PortMap{}
	if config.Port > 0 {
		portBindings[containerPort(config.Port)] = []nat.PortBinding{
			{
				HostIP:   ServiceHostIP,
				HostPort: strconv.Itoa(hostPort),
			},
		}
	}

	resources := container.Resources{}
	if config.CPU > 0 {
		resources.NanoCPUs = int64(config.CPU * nanoCPUs)
	}

	if config.MemoryGB > 0 {
		resources.Memory = int64(config.MemoryGB * bytesPerGB)
	}

	return &container.HostConfig{
		Binds:        config.Binds,
		PortBindings: portBindings,
		RestartPolicy: container.RestartPolicy{
			Name: ServiceRestartPolicy,
		},
		Resources: resources,
	}
}

func containerPort(port int) nat.Port {
	return nat.Port(strconv.Itoa(port) + "/tcp")
}
