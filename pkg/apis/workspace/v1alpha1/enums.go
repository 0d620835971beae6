package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Enum Interface ---

// EnumValuer is implemented by string-based enum types to provide their valid values.
// The schema generator uses this interface to automatically discover enum constraints.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// --- Hosting Targets ---

// Target defines the hosting target options for a scoring service.
type Target string

const (
	// TargetContainerInstance deploys the scoring service as a single container
	// on the local container engine.
	TargetContainerInstance Target = "ContainerInstance"
	// TargetKubernetes deploys the scoring service to a managed Kubernetes cluster.
	TargetKubernetes Target = "Kubernetes"
)

// Set parses and sets the value of the Target. Matching is case-insensitive
// so the type satisfies pflag.Value for --target flags.
func (t *Target) Set(value string) error {
	for _, target := range ValidTargets() {
		if strings.EqualFold(value, string(target)) {
			*t = target

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s, %s)",
		ErrInvalidTarget,
		value,
		TargetContainerInstance,
		TargetKubernetes,
	)
}

// IsValid checks if the target value is supported.
func (t *Target) IsValid() bool {
	return slices.Contains(ValidTargets(), *t)
}

// String returns the string representation of the Target.
func (t *Target) String() string {
	return string(*t)
}

// Type returns the type of the Target.
func (t *Target) Type() string {
	return "Target"
}

// Default returns the default value for Target (ContainerInstance).
func (t *Target) Default() any {
	return TargetContainerInstance
}

// ValidValues returns all valid Target values as strings.
func (t *Target) ValidValues() []string {
	return []string{
		string(TargetContainerInstance),
		string(TargetKubernetes),
	}
}

// ValidTargets returns supported hosting target values.
func ValidTargets() []Target {
	return []Target{TargetContainerInstance, TargetKubernetes}
}
