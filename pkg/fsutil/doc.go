// Package fsutil provides utilities for filesystem operations.
//
// Key functionality:
//   - File reading: ReadFileSafe
//   - File writing: TryWriteFile
//   - Path operations: ExpandHomePath
//
// Subpackages:
//   - configmanager: Configuration loading and management
//   - generator: Template and configuration generation
//   - marshaller: Serialization and deserialization
//   - scaffolder: Project scaffolding and file generation
package fsutil
