// Package yamlgenerator provides a generator that renders models as YAML and
// optionally writes them to disk.
package yamlgenerator

import (
	"fmt"
	"os"
	"path/filepath"

	yamlmarshaller "github.com/devantler-tech/msail/pkg/fsutil/marshaller/yaml"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Options defines options for the YAML generator.
type Options struct {
	// Output is the file path to write. When empty, the generator only returns
	// the rendered YAML.
	Output string
	// Force overwrites an existing output file.
	Force bool
}

// YAMLGenerator renders models of type T as YAML files.
type YAMLGenerator[T any] struct {
	Marshaller *yamlmarshaller.Marshaller[T]
}

// NewYAMLGenerator creates a YAML generator for models of type T.
func NewYAMLGenerator[T any]() *YAMLGenerator[T] {
	return &YAMLGenerator[T]{
		Marshaller: yamlmarshaller.NewMarshaller[T](),
	}
}

// Generate renders the model as YAML and writes it to opts.Output when set.
// Existing files are only overwritten when opts.Force is true; the rendered
// content is returned either way.
func (g *YAMLGenerator[T]) Generate(model T, opts Options) (string, error) {
	content, err := g.Marshaller.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("failed to render model: %w", err)
	}

	if opts.Output == "" {
		return content, nil
	}

	err = writeFile(opts.Output, []byte(content), opts.Force)
	if err != nil {
		return "", err
	}

	return content, nil
}

// writeFile writes content to path, creating parent directories as needed.
// An existing file is left untouched unless force is set.
func writeFile(path string, content []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), dirPerm)
	if err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	err = os.WriteFile(path, content, filePerm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
