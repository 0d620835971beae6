// Package cli provides reusable helpers for command wiring and execution.
//
// This package is organized into subpackages for different functionality:
//
//   - cli/cmd: The msail command tree (init, model, image, service, serve)
//   - cli/flags: Flag handling utilities including timing detection
//   - cli/lifecycle: Service lifecycle command helpers (create, delete, keys)
//   - cli/ui: User interface components (asciiart, errorhandler)
//
// The utilities in this package follow dependency injection patterns and
// integrate with the MSail runtime container for testability and flexibility.
package cli
