package deployer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	docker "github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/devantler-tech/msail/pkg/fsutil"
	"github.com/docker/docker/client"
)

// ContainerInstanceDeployer hosts scoring services as single containers on
// a local container engine.
type ContainerInstanceDeployer struct {
	services *docker.ServiceManager
}

var _ Deployer = (*ContainerInstanceDeployer)(nil)

// NewContainerInstanceDeployer creates a deployer backed by the given engine client.
func NewContainerInstanceDeployer(apiClient client.APIClient) (*ContainerInstanceDeployer, error) {
	services, err := docker.NewServiceManager(apiClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create service manager: %w", err)
	}

	return &ContainerInstanceDeployer{services: services}, nil
}

// Deploy runs the scoring image as a labeled container and waits for it to
// answer health checks. An existing container for the service is stopped
// and removed first, so an update replaces the container while the caller
// carries the credentials over in the spec.
func (d *ContainerInstanceDeployer) Deploy(ctx context.Context, spec Spec) (string, error) {
	config, err := d.buildServiceConfig(spec)
	if err != nil {
		return "", err
	}

	exists, err := d.services.ServiceExists(ctx, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to check for existing service: %w", err)
	}

	if exists {
		err = d.services.DeleteService(ctx, spec.Name)
		if err != nil {
			return "", fmt.Errorf("failed to replace existing service: %w", err)
		}
	}

	err = d.services.CreateService(ctx, config)
	if err != nil {
		return "", fmt.Errorf("failed to create service container: %w", err)
	}

	err = d.waitUntilReady(ctx, spec)
	if err != nil {
		return "", err
	}

	hostPort, err := d.services.GetServicePort(ctx, spec.Name, int(spec.Port))
	if err != nil {
		return "", fmt.Errorf("failed to resolve service host port: %w", err)
	}

	return scoringEndpoint(spec.scheme(), docker.ServiceHostIP, hostPort), nil
}

// Delete stops and removes the service container.
func (d *ContainerInstanceDeployer) Delete(ctx context.Context, name string) error {
	err := d.services.DeleteService(ctx, name)
	if err != nil {
		if errors.Is(err, docker.ErrServiceContainerNotFound) {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
		}

		return fmt.Errorf("failed to delete service container: %w", err)
	}

	return nil
}

// Exists reports whether a container carries the service label for the name.
func (d *ContainerInstanceDeployer) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := d.services.ServiceExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check for service container: %w", err)
	}

	return exists, nil
}

// List returns the names of the scoring service containers on the engine.
func (d *ContainerInstanceDeployer) List(ctx context.Context) ([]string, error) {
	services, err := d.services.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list service containers: %w", err)
	}

	return services, nil
}

// waitUntilReady polls the health endpoint over the scheme the service serves.
func (d *ContainerInstanceDeployer) waitUntilReady(ctx context.Context, spec Spec) error {
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = docker.ServiceReadyTimeout
	}

	var err error
	if spec.TLSEnabled() {
		err = d.services.WaitForServiceReadyTLS(ctx, spec.Name, int(spec.Port), timeout)
	} else {
		err = d.services.WaitForServiceReadyWithTimeout(ctx, spec.Name, int(spec.Port), timeout)
	}

	if err != nil {
		return fmt.Errorf("service did not become ready: %w", err)
	}

	return nil
}

// buildServiceConfig maps the deployment spec onto a container definition,
// staging TLS material as read-only bind mounts.
func (d *ContainerInstanceDeployer) buildServiceConfig(spec Spec) (docker.ServiceConfig, error) {
	config := docker.ServiceConfig{
		Name:     spec.Name,
		DNSLabel: spec.dnsLabel(),
		Image:    spec.Image,
		Port:     int(spec.Port),
		CPU:      spec.CPU,
		MemoryGB: spec.MemoryGB,
	}

	var certPath, keyPath string

	if spec.TLSEnabled() {
		certHost, err := resolveTLSFile(spec.TLSCertFile)
		if err != nil {
			return docker.ServiceConfig{}, err
		}

		keyHost, err := resolveTLSFile(spec.TLSKeyFile)
		if err != nil {
			return docker.ServiceConfig{}, err
		}

		certPath = path.Join(tlsMountPath, tlsCertFileName)
		keyPath = path.Join(tlsMountPath, tlsKeyFileName)
		config.Binds = []string{
			certHost + ":" + certPath + ":ro",
			keyHost + ":" + keyPath + ":ro",
		}
	}

	for _, pair := range serveEnvironment(spec, certPath, keyPath) {
		config.Env = append(config.Env, pair.name+"="+pair.value)
	}

	return config, nil
}

// resolveTLSFile expands and absolutizes the path and verifies the file
// exists. The engine requires absolute bind sources, and a missing source
// would be materialized as an empty directory instead of failing.
func resolveTLSFile(file string) (string, error) {
	expanded, err := fsutil.ExpandHomePath(file)
	if err != nil {
		return "", fmt.Errorf("failed to expand tls file path: %w", err)
	}

	absolute, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve tls file path: %w", err)
	}

	info, err := os.Stat(absolute)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrTLSFileMissing, file)
	}

	return absolute, nil
}
