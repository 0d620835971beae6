// Package svc provides service layer components for MSail.
//
// This package contains the business logic layer that coordinates between
// the CLI commands and the underlying clients/infrastructure.
//
// Subpackages:
//   - deployer: Scoring service deployment to container-instance and Kubernetes targets
//   - imagebuilder: Scoring image assembly, registry push, and daemon lifecycle
package svc
