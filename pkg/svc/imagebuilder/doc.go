// Package imagebuilder provides the scoring image build service.
//
// A scoring image bakes a registered model file, the scoring script, and the
// declared package dependencies on top of the runtime base image. The package
// renders the Dockerfile from the dependency descriptor, streams the build
// context to the Docker daemon, and manages the lifecycle of built images
// (list, remove, push to a remote registry).
//
// All operations use Go libraries only (Docker SDK, go-containerregistry) and
// do not rely on any binaries installed on the host machine.
package imagebuilder
