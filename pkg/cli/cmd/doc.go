// Package cmd provides the command-line interface for MSail.
//
// This package contains the root command and delegates to subcommand packages:
//   - model: Model registry management (register, list, get, remove)
//   - image: Scoring image management (build, list, push, remove)
//   - service: Scoring service lifecycle (create, delete, keys, list)
//
// It also hosts the init command that scaffolds a workspace and the serve
// command that runs the in-container scoring server.
package cmd
