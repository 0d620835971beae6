// Package service provides CLI commands for managing deployed scoring services.
//
// The service command group deploys built scoring images to the configured
// hosting target, lists and deletes deployments, and manages the credentials
// of authenticated scoring endpoints.
package service
