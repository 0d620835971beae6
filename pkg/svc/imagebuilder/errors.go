package imagebuilder

import "errors"

var (
	// ErrImageNameEmpty is returned when the image name is empty.
	ErrImageNameEmpty = errors.New("image name is empty")
	// ErrBaseImageEmpty is returned when no runtime base image is configured.
	ErrBaseImageEmpty = errors.New("base image is empty")
	// ErrScriptPathEmpty is returned when no scoring script path is configured.
	ErrScriptPathEmpty = errors.New("scoring script path is empty")
	// ErrModelPathEmpty is returned when no model file path is configured.
	ErrModelPathEmpty = errors.New("model file path is empty")
	// ErrImageBuildFailed is returned when the daemon reports a build failure.
	ErrImageBuildFailed = errors.New("image build failed")
	// ErrImageNotFound is returned when an image is not present in the daemon.
	ErrImageNotFound = errors.New("image not found")
)
