// Package registry stores model artifacts, scoring service records, and image
// records for a workspace. Artifacts are kept content-addressed on disk and
// indexed in an embedded bbolt database, so the registry works without any
// external service running.
package registry
