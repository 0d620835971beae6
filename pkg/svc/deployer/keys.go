package deployer

import (
	"fmt"
	"strings"

	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/google/uuid"
)

// Key names accepted by RegenerateKey.
const (
	// PrimaryKeyName selects the primary credential.
	PrimaryKeyName = "primary"
	// SecondaryKeyName selects the secondary credential.
	SecondaryKeyName = "secondary"
)

// GenerateKeys creates a fresh credential pair for a scoring service.
// Keys are generated once at first deploy and survive updates.
func GenerateKeys() registry.Keys {
	return registry.Keys{
		Primary:   newKey(),
		Secondary: newKey(),
	}
}

// RegenerateKey replaces the named credential and leaves the other intact,
// so clients holding the untouched key keep scoring during a rotation.
func RegenerateKey(keys registry.Keys, name string) (registry.Keys, error) {
	switch name {
	case PrimaryKeyName:
		keys.Primary = newKey()
	case SecondaryKeyName:
		keys.Secondary = newKey()
	default:
		return keys, fmt.Errorf("%w: %q", ErrUnknownKeyName, name)
	}

	return keys, nil
}

// newKey returns a UUID with the hyphens stripped.
func newKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
