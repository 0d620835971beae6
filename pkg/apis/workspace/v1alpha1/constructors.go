package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NewWorkspace creates a new Workspace instance with minimal required structure.
// Default values are applied by SetDefaults and the configuration system.
func NewWorkspace() *Workspace {
	return &Workspace{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		Spec: NewSpec(),
	}
}

// NewSpec creates a new Spec with zero values for all sub-specs.
func NewSpec() Spec {
	return Spec{
		Name:     "",
		Registry: RegistrySpec{Root: ""},
		Image:    NewImageSpec(),
		Deploy:   NewDeploySpec(),
	}
}

// NewImageSpec creates a new ImageSpec with zero values.
func NewImageSpec() ImageSpec {
	return ImageSpec{
		Base:         "",
		Name:         "",
		Tag:          "",
		Script:       "",
		Dependencies: "",
		Model:        "",
	}
}

// NewDeploySpec creates a new DeploySpec with zero values.
func NewDeploySpec() DeploySpec {
	return DeploySpec{
		Target:     "",
		CPU:        0,
		MemoryGB:   0,
		Port:       0,
		DNSLabel:   "",
		Auth:       false,
		TLS:        TLSSpec{CertFile: "", KeyFile: ""},
		Kubernetes: NewKubernetesSpec(),
	}
}

// NewKubernetesSpec creates a new KubernetesSpec with zero values.
func NewKubernetesSpec() KubernetesSpec {
	return KubernetesSpec{
		Namespace: "",
		Connection: Connection{
			Kubeconfig: "",
			Context:    "",
			Timeout:    metav1.Duration{Duration: 0},
		},
	}
}
