// Package client provides embedded platform clients.
//
// This package contains Go library wrappers for the platforms MSail deploys
// to, embedded directly so no external binaries are required:
//
//   - docker: Docker engine access and scoring-service container lifecycle
//
// By embedding these clients as Go libraries, MSail only requires a running
// Docker daemon as an external dependency.
package client
