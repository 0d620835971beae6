package scaffolder_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	v1alpha1 "github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	staticgenerator "github.com/devantler-tech/msail/pkg/fsutil/generator/static"
	yamlgenerator "github.com/devantler-tech/msail/pkg/fsutil/generator/yaml"
	"github.com/devantler-tech/msail/pkg/fsutil/scaffolder"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGenerateFailure = errors.New("generate failure")

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

func newTestWorkspace() v1alpha1.Workspace {
	workspace := v1alpha1.NewWorkspace()
	workspace.Spec.Name = "accidents"
	workspace.SetDefaults()

	return *workspace
}

func TestNewScaffolder(t *testing.T) {
	t.Parallel()

	cfg := newTestWorkspace()
	scaf := scaffolder.NewScaffolder(cfg, os.Stdout)

	require.NotNil(t, scaf)
	require.Equal(t, cfg, scaf.WorkspaceConfig)
	require.NotNil(t, scaf.WorkspaceYAMLGenerator)
	require.NotNil(t, scaf.DependenciesGenerator)
	require.NotNil(t, scaf.ScriptGenerator)
}

func TestScaffoldCreatesWorkspaceFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	buffer := &bytes.Buffer{}
	scaf := scaffolder.NewScaffolder(newTestWorkspace(), buffer)

	require.NoError(t, scaf.Scaffold(tempDir, false))

	for _, name := range []string{
		scaffolder.WorkspaceConfigFile,
		v1alpha1.DefaultScoringScript,
		v1alpha1.DefaultDependencyDescriptor,
	} {
		assert.FileExists(t, filepath.Join(tempDir, name))
	}

	configContent, err := os.ReadFile(filepath.Join(tempDir, scaffolder.WorkspaceConfigFile))
	require.NoError(t, err)
	snaps.MatchSnapshot(t, string(configContent))

	scriptContent, err := os.ReadFile(filepath.Join(tempDir, v1alpha1.DefaultScoringScript))
	require.NoError(t, err)
	assert.Equal(t, scaffolder.StarterScoringScript, string(scriptContent))

	snaps.MatchSnapshot(t, buffer.String())
}

func TestScaffoldSkipsExistingFilesWithoutForce(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	scriptPath := filepath.Join(tempDir, v1alpha1.DefaultScoringScript)
	require.NoError(t, os.WriteFile(scriptPath, []byte("-- custom\n"), 0o600))

	buffer := &bytes.Buffer{}
	scaf := scaffolder.NewScaffolder(newTestWorkspace(), buffer)

	require.NoError(t, scaf.Scaffold(tempDir, false))

	content, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "-- custom\n", string(content))
	assert.Contains(t, buffer.String(), "skipped")
}

func TestScaffoldForceOverwritesExistingFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	scriptPath := filepath.Join(tempDir, v1alpha1.DefaultScoringScript)
	require.NoError(t, os.WriteFile(scriptPath, []byte("-- custom\n"), 0o600))

	buffer := &bytes.Buffer{}
	scaf := scaffolder.NewScaffolder(newTestWorkspace(), buffer)

	require.NoError(t, scaf.Scaffold(tempDir, true))

	content, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, scaffolder.StarterScoringScript, string(content))
	assert.Contains(t, buffer.String(), "overwriting")
}

func TestScaffoldCustomFileNames(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg := newTestWorkspace()
	cfg.Spec.Image.Script = "scoring/entry.lua"
	cfg.Spec.Image.Dependencies = "deps.yaml"

	scaf := scaffolder.NewScaffolder(cfg, &bytes.Buffer{})

	require.NoError(t, scaf.Scaffold(tempDir, false))

	assert.FileExists(t, filepath.Join(tempDir, "scoring", "entry.lua"))
	assert.FileExists(t, filepath.Join(tempDir, "deps.yaml"))
}

// failingScriptGenerator always fails, to exercise error wrapping.
type failingScriptGenerator struct{}

func (failingScriptGenerator) Generate(string, staticgenerator.Options) (string, error) {
	return "", errGenerateFailure
}

func TestScaffoldWrapsScriptGenerationErrors(t *testing.T) {
	t.Parallel()

	scaf := scaffolder.NewScaffolder(newTestWorkspace(), &bytes.Buffer{})
	scaf.ScriptGenerator = failingScriptGenerator{}

	err := scaf.Scaffold(t.TempDir(), false)

	require.ErrorIs(t, err, scaffolder.ErrScoringScriptGeneration)
	require.ErrorIs(t, err, errGenerateFailure)
}

// failingWorkspaceGenerator always fails, to exercise error wrapping.
type failingWorkspaceGenerator struct{}

func (failingWorkspaceGenerator) Generate(
	v1alpha1.Workspace,
	yamlgenerator.Options,
) (string, error) {
	return "", errGenerateFailure
}

func TestScaffoldWrapsWorkspaceConfigErrors(t *testing.T) {
	t.Parallel()

	scaf := scaffolder.NewScaffolder(newTestWorkspace(), &bytes.Buffer{})
	scaf.WorkspaceYAMLGenerator = failingWorkspaceGenerator{}

	err := scaf.Scaffold(t.TempDir(), false)

	require.ErrorIs(t, err, scaffolder.ErrWorkspaceConfigGeneration)
}
