// Package staticgenerator provides a generator that writes fixed file content,
// used for scaffolding starter scripts.
package staticgenerator

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Options defines options for the static generator.
type Options struct {
	// Output is the file path to write. When empty, the generator only returns
	// the content.
	Output string
	// Force overwrites an existing output file.
	Force bool
}

// StaticGenerator writes string content to files verbatim.
type StaticGenerator struct{}

// NewStaticGenerator creates a static content generator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Generate writes the content to opts.Output when set. Existing files are only
// overwritten when opts.Force is true; the content is returned either way.
func (g *StaticGenerator) Generate(content string, opts Options) (string, error) {
	if opts.Output == "" {
		return content, nil
	}

	if _, err := os.Stat(opts.Output); err == nil && !opts.Force {
		return content, nil
	}

	err := os.MkdirAll(filepath.Dir(opts.Output), dirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", opts.Output, err)
	}

	err = os.WriteFile(opts.Output, []byte(content), filePerm)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", opts.Output, err)
	}

	return content, nil
}
