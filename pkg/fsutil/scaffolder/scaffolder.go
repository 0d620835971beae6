// Package scaffolder generates MSail workspace files: the workspace
// configuration, a starter scoring script, and the dependency descriptor.
package scaffolder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	v1alpha1 "github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/fsutil/generator"
	staticgenerator "github.com/devantler-tech/msail/pkg/fsutil/generator/static"
	yamlgenerator "github.com/devantler-tech/msail/pkg/fsutil/generator/yaml"
	"github.com/devantler-tech/msail/pkg/ui/notify"
)

// WorkspaceConfigFile is the filename for the workspace configuration.
const WorkspaceConfigFile = "msail.yaml"

// StarterScoringScript is the scoring script scaffolded into new workspaces.
// The runtime exposes the registered model as a global `model` table with
// `path` and `data` fields before init runs.
const StarterScoringScript = `-- Scoring entry points. The serve runtime calls init once at container start
-- and run once per request.

-- init prepares any state the run function needs. The registered model is
-- available as the global table model, with model.path and model.data.
function init()
end

-- run receives the raw JSON request body as a string. Return a JSON-encoded
-- string to control the response shape; any other value is wrapped in a
-- message field.
function run(input)
  return input
end
`

var (
	// Scaffolding errors.

	// ErrWorkspaceConfigGeneration wraps failures when creating msail.yaml.
	ErrWorkspaceConfigGeneration = errors.New("failed to generate workspace configuration")

	// ErrScoringScriptGeneration wraps failures when creating the scoring script.
	ErrScoringScriptGeneration = errors.New("failed to generate scoring script")

	// ErrDependencyDescriptorGeneration wraps failures when creating the dependency descriptor.
	ErrDependencyDescriptorGeneration = errors.New("failed to generate dependency descriptor")
)

// Scaffolder is responsible for generating MSail workspace files.
type Scaffolder struct {
	WorkspaceConfig        v1alpha1.Workspace
	WorkspaceYAMLGenerator generator.Generator[v1alpha1.Workspace, yamlgenerator.Options]
	DependenciesGenerator  generator.Generator[*v1alpha1.Dependencies, yamlgenerator.Options]
	ScriptGenerator        generator.Generator[string, staticgenerator.Options]
	Writer                 io.Writer
}

// NewScaffolder creates a new Scaffolder instance with the provided workspace configuration.
func NewScaffolder(cfg v1alpha1.Workspace, writer io.Writer) *Scaffolder {
	return &Scaffolder{
		WorkspaceConfig:        cfg,
		WorkspaceYAMLGenerator: yamlgenerator.NewYAMLGenerator[v1alpha1.Workspace](),
		DependenciesGenerator:  yamlgenerator.NewYAMLGenerator[*v1alpha1.Dependencies](),
		ScriptGenerator:        staticgenerator.NewStaticGenerator(),
		Writer:                 writer,
	}
}

// Scaffold generates workspace files.
//
// This method orchestrates the generation of:
//   - msail.yaml workspace configuration
//   - the scoring script named by spec.image.script
//   - the dependency descriptor named by spec.image.dependencies
//
// Parameters:
//   - output: The output directory for generated files
//   - force: If true, overwrites existing files; if false, skips existing files
func (s *Scaffolder) Scaffold(output string, force bool) error {
	err := s.generateWorkspaceConfig(output, force)
	if err != nil {
		return err
	}

	err = s.generateScoringScript(output, force)
	if err != nil {
		return err
	}

	return s.generateDependencyDescriptor(output, force)
}

func (s *Scaffolder) generateWorkspaceConfig(output string, force bool) error {
	path := filepath.Join(output, WorkspaceConfigFile)
	if s.skipExisting(path, WorkspaceConfigFile, force) {
		return nil
	}

	existed := fileExists(path)

	_, err := s.WorkspaceYAMLGenerator.Generate(s.WorkspaceConfig, yamlgenerator.Options{
		Output: path,
		Force:  force,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspaceConfigGeneration, err)
	}

	s.notifyFileAction(WorkspaceConfigFile, existed)

	return nil
}

func (s *Scaffolder) generateScoringScript(output string, force bool) error {
	name := s.WorkspaceConfig.Spec.Image.Script
	if name == "" {
		name = v1alpha1.DefaultScoringScript
	}

	path := filepath.Join(output, name)
	if s.skipExisting(path, name, force) {
		return nil
	}

	existed := fileExists(path)

	_, err := s.ScriptGenerator.Generate(StarterScoringScript, staticgenerator.Options{
		Output: path,
		Force:  force,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScoringScriptGeneration, err)
	}

	s.notifyFileAction(name, existed)

	return nil
}

func (s *Scaffolder) generateDependencyDescriptor(output string, force bool) error {
	name := s.WorkspaceConfig.Spec.Image.Dependencies
	if name == "" {
		name = v1alpha1.DefaultDependencyDescriptor
	}

	path := filepath.Join(output, name)
	if s.skipExisting(path, name, force) {
		return nil
	}

	existed := fileExists(path)

	_, err := s.DependenciesGenerator.Generate(v1alpha1.NewDependencies(), yamlgenerator.Options{
		Output: path,
		Force:  force,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDependencyDescriptorGeneration, err)
	}

	s.notifyFileAction(name, existed)

	return nil
}

// File handling helpers.

// skipExisting reports whether the file should be left untouched, warning the
// user when an existing file blocks generation.
func (s *Scaffolder) skipExisting(path, displayName string, force bool) bool {
	if force || !fileExists(path) {
		return false
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.WarningType,
		Content: "skipped '%s', file exists use --force to overwrite",
		Args:    []any{displayName},
		Writer:  s.Writer,
	})

	return true
}

func (s *Scaffolder) notifyFileAction(displayName string, existed bool) {
	action := "generating"
	if existed {
		action = "overwriting"
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.GenerateType,
		Content: "%s '%s'",
		Args:    []any{action, displayName},
		Writer:  s.Writer,
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
