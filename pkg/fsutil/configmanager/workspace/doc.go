// Package workspace provides configuration management for MSail
// v1alpha1.Workspace configurations.
//
// This package contains the Manager implementation for loading msail.yaml
// files, field selector binding functionality for automatic CLI flag creation,
// and field selection utilities for working with workspace configurations.
package workspace
