// Package configmanager provides centralized configuration management for MSail.
//
// This package contains the generic interface for loading and managing
// configuration files, with support for environment variable overrides and
// flag-derived field values.
//
// Key functionality:
//   - ConfigManager interface for generic configuration loading
//   - LoadOptions for silent, flags-only, and validation-skipping loads
//
// Subpackages:
//   - workspace: MSail workspace configuration management
package configmanager
