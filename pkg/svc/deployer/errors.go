package deployer

import "errors"

// Error definitions for deployment operations.
var (
	// ErrUnsupportedTarget is returned when an unsupported hosting target is specified.
	ErrUnsupportedTarget = errors.New("unsupported hosting target")

	// ErrServiceNotFound is returned when a scoring service is not deployed on the target.
	ErrServiceNotFound = errors.New("service not found")

	// ErrTLSFileMissing is returned when a configured TLS file does not exist at deploy time.
	ErrTLSFileMissing = errors.New("tls file does not exist")

	// ErrUnknownKeyName is returned when a key regeneration names neither credential.
	ErrUnknownKeyName = errors.New("unknown key name")
)
