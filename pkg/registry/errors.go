package registry

import "errors"

// ErrModelNotFound is returned when a model name or version is not in the registry.
var ErrModelNotFound = errors.New("model not found")

// ErrServiceNotFound is returned when no service record exists for a name.
var ErrServiceNotFound = errors.New("service not found")

// ErrImageNotFound is returned when no image record exists for a reference.
var ErrImageNotFound = errors.New("image not found")

// ErrEmptyModelName is returned when a model is registered without a name.
var ErrEmptyModelName = errors.New("model name must not be empty")
