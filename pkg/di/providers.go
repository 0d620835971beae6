package di

import (
	"github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root command and tests.
// It registers default implementations for timer, Docker client factory and deployer factory.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideDockerClientFactory,
		provideDeployerFactory,
	)
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideDockerClientFactory registers the Docker client factory dependency.
func provideDockerClientFactory(i Injector) error {
	do.Provide(i, func(Injector) (docker.ClientFactory, error) {
		return docker.GetDockerClient, nil
	})

	return nil
}

// provideDeployerFactory registers the deployer factory dependency.
func provideDeployerFactory(i Injector) error {
	do.Provide(i, func(Injector) (deployer.Factory, error) {
		return deployer.DefaultFactory{}, nil
	})

	return nil
}
