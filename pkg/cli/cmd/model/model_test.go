package model_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	modelpkg "github.com/devantler-tech/msail/pkg/cli/cmd/model"
	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	v := m.Run()

	snaps.Clean(m)

	os.Exit(v)
}

// newModelTestRuntimeContainer builds a runtime container providing only the
// timer dependency the model commands resolve.
func newModelTestRuntimeContainer(t *testing.T) *runtime.Runtime {
	t.Helper()

	return runtime.New(
		func(i runtime.Injector) error {
			do.Provide(i, func(runtime.Injector) (timer.Timer, error) {
				return timer.New(), nil
			})

			return nil
		},
	)
}

// runCmd executes the command against a buffer and returns its output.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	if args == nil {
		args = []string{}
	}

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// writeArtifact creates a model artifact file for registration tests.
func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// registerModel runs the register command against the given registry root and
// returns the command output. It fails the test on error.
func registerModel(t *testing.T, root string, args ...string) string {
	t.Helper()

	cmd := modelpkg.NewRegisterCmd(newModelTestRuntimeContainer(t))

	out, err := runCmd(t, cmd, append(args, "--registry-root", root)...)
	require.NoError(t, err)

	return out
}

func TestNewModelCmd_HasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := modelpkg.NewModelCmd(runtime.NewRuntime())

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	require.Contains(t, names, "register")
	require.Contains(t, names, "list")
	require.Contains(t, names, "get")
	require.Contains(t, names, "remove")
}

func TestNewModelCmd_ShowsHelp(t *testing.T) {
	t.Parallel()

	cmd := modelpkg.NewModelCmd(runtime.NewRuntime())

	out, err := runCmd(t, cmd)
	require.NoError(t, err)
	require.Contains(t, out, "Manage the local model registry")
}
