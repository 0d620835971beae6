package v1alpha1

import "errors"

// ErrInvalidTarget is returned when an invalid hosting target is specified.
var ErrInvalidTarget = errors.New("invalid hosting target")

// ErrInvalidCPU is returned when the CPU allocation is not positive.
var ErrInvalidCPU = errors.New("cpu allocation must be greater than zero")

// ErrInvalidMemory is returned when the memory allocation is not positive.
var ErrInvalidMemory = errors.New("memory allocation must be greater than zero")

// ErrInvalidPort is returned when the scoring port is outside the valid range.
var ErrInvalidPort = errors.New("port is outside the valid range")

// ErrTLSFilesIncomplete is returned when only one of the TLS certificate and key files is set.
var ErrTLSFilesIncomplete = errors.New("tls certificate and key files must be set together")

// ErrNameTooLong is returned when a workspace or service name exceeds the maximum length.
var ErrNameTooLong = errors.New("name is too long")

// ErrNameInvalid is returned when a workspace or service name is not DNS-1123 compliant.
var ErrNameInvalid = errors.New("name is invalid")

// ErrModelReferenceInvalid is returned when a model reference cannot be parsed.
var ErrModelReferenceInvalid = errors.New("model reference is invalid")
