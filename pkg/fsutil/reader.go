package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reader operations.

// ReadFileSafe reads a file after verifying it resolves inside the base
// directory. It guards against path traversal when the file path comes from
// user input.
//
// Parameters:
//   - basePath: The directory the file must live under
//   - filePath: The file to read, absolute or relative to basePath
//
// Returns:
//   - []byte: The file contents
//   - error: ErrBasePath if basePath is empty, ErrPathOutsideBase if the
//     resolved path escapes basePath, or a read error
func ReadFileSafe(basePath string, filePath string) ([]byte, error) {
	if basePath == "" {
		return nil, ErrBasePath
	}

	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path %s: %w", basePath, err)
	}

	candidate := filePath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(absBase, candidate)
	}

	absFile, err := filepath.Abs(filepath.Clean(candidate))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file path %s: %w", filePath, err)
	}

	relative, err := filepath.Rel(absBase, absFile)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return nil, ErrPathOutsideBase
	}

	content, err := os.ReadFile(absFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", absFile, err)
	}

	return content, nil
}
