// Package apis provides API type definitions for MSail resources.
//
// This package contains versioned API types following Kubernetes API conventions:
//
//   - workspace: Workspace configuration types for MSail declarative configuration
//
// The API types are designed to be serializable to YAML and support
// declarative configuration workflows.
package apis
