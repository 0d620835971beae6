// Package lifecycle provides scoring service lifecycle command helpers.
//
// This package contains utilities for building and executing standard
// service lifecycle commands (create, delete, keys, etc.) with consistent
// messaging, timing, and error handling patterns.
package lifecycle
