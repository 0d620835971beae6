// Package image contains the image subcommands for building, listing,
// publishing, and removing containerized scoring images.
package image
