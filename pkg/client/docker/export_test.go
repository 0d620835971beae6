//nolint:gochecknoglobals // export_test.go pattern requires global variables to expose internal functions
package docker

import "github.com/docker/docker/api/types/container"

// Export unexported functions for testing.

// ContainerPortName exports containerPort for testing.
var ContainerPortName = containerPort

// BuildContainerConfig exports buildContainerConfig for testing.
func BuildContainerConfig(manager *ServiceManager, config ServiceConfig) *container.Config {
	return manager.buildContainerConfig(config)
}

// BuildHostConfig exports buildHostConfig for testing.
func BuildHostConfig(manager *ServiceManager, config ServiceConfig) *container.HostConfig {
	return manager.buildHostConfig(config)
}
