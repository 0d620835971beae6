package fsutil

import "errors"

// Static error definitions for filesystem operations.
var (
	// ErrPathOutsideBase indicates a file path resolves outside its base directory.
	ErrPathOutsideBase = errors.New("invalid path: file is outside base directory")

	// ErrEmptyOutputPath indicates an empty output path was provided.
	ErrEmptyOutputPath = errors.New("output path cannot be empty")

	// ErrBasePath indicates an empty base path was provided.
	ErrBasePath = errors.New("base path cannot be empty")
)

// File permission constants.
const (
	// dirPermUserGroupRX allows the owner full access and the group read/execute.
	dirPermUserGroupRX = 0o750

	// filePermUserRW allows the owner read/write access only.
	filePermUserRW = 0o600
)
