package v1alpha1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

// DependenciesKind is the kind for dependency descriptors.
const DependenciesKind = "Dependencies"

// Dependencies describes the packages baked into a scoring image alongside the
// model and the scoring script. The descriptor is one of the three image build
// inputs, next to the scoring script and the registered model file.
type Dependencies struct {
	metav1.TypeMeta `json:",inline" mapstructure:",squash"`

	// Packages are interpreter packages installed into the image.
	Packages []Package `json:"packages,omitempty"`
	// System are operating system packages installed into the image.
	System []string `json:"system,omitempty"`
}

// Package identifies an interpreter package and an optional pinned version.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version,omitzero"`
}

// NewDependencies creates a Dependencies descriptor with API metadata set.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TypeMeta: metav1.TypeMeta{
			Kind:       DependenciesKind,
			APIVersion: APIVersion,
		},
		Packages: nil,
		System:   nil,
	}
}
