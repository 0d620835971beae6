package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency injection scope handed to modules and handlers.
type Injector = do.Injector

// Module registers dependencies on an injector.
type Module func(Injector) error

// Runtime holds the base modules applied to every command invocation.
type Runtime struct {
	modules []Module
}

// New creates a runtime from the given base modules. Nil modules are skipped.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke runs the base modules followed by any extra modules against a fresh
// injector, then calls the handler. The injector is shut down when the handler
// returns, so resolved dependencies must not outlive the call.
func (r *Runtime) Invoke(handler func(Injector) error, extraModules ...Module) error {
	injector := do.New()

	defer func() {
		_ = injector.Shutdown()
	}()

	err := applyModules(injector, r.modules)
	if err != nil {
		return err
	}

	err = applyModules(injector, extraModules)
	if err != nil {
		return err
	}

	return handler(injector)
}

func applyModules(injector Injector, modules []Module) error {
	for _, module := range modules {
		if module == nil {
			continue
		}

		err := module(injector)
		if err != nil {
			return err
		}
	}

	return nil
}

// RunEWithRuntime adapts an injector-aware handler to a cobra RunE signature.
// Each command execution gets a fresh injector from the runtime.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}
