// Package workspace provides workspace configuration API types.
//
// This package contains versioned API types for MSail workspace configuration:
//
//   - v1alpha1: Current API version for workspace configuration
//
// The workspace types define the declarative configuration format used
// in msail.yaml files.
package workspace
