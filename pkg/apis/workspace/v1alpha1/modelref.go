package v1alpha1

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseModelRef parses a model reference of the form "name" or "name:version".
// A reference without a version returns version 0, which registry lookups
// interpret as the latest registered version.
func ParseModelRef(ref string) (string, int, error) {
	name, versionPart, found := strings.Cut(ref, ":")
	if name == "" {
		return "", 0, fmt.Errorf("%w: %q has no model name", ErrModelReferenceInvalid, ref)
	}

	if !found {
		return name, 0, nil
	}

	version, err := strconv.Atoi(versionPart)
	if err != nil || version < 1 {
		return "", 0, fmt.Errorf(
			"%w: %q version must be a positive integer",
			ErrModelReferenceInvalid, ref,
		)
	}

	return name, version, nil
}
