package di

import (
	"fmt"

	"github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector with consistent error handling.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveDockerClientFactory retrieves the Docker client factory dependency
// from the injector with consistent error handling.
func ResolveDockerClientFactory(injector Injector) (docker.ClientFactory, error) {
	factory, err := do.Invoke[docker.ClientFactory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve docker client factory dependency: %w", err)
	}

	return factory, nil
}

// ResolveDeployerFactory retrieves the deployer factory dependency
// from the injector with consistent error handling.
func ResolveDeployerFactory(injector Injector) (deployer.Factory, error) {
	factory, err := do.Invoke[deployer.Factory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve deployer factory dependency: %w", err)
	}

	return factory, nil
}

// Handler decorators.

// WithTimer decorates a handler to automatically resolve the timer dependency.
// This higher-order function simplifies command handlers that need timer access.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, tmr)
	}
}
