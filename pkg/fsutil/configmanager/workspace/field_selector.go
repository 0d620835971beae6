package workspace

import (
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// defaultReadinessTimeout is how long deploy commands wait for a service to answer.
const defaultReadinessTimeout = 5 * time.Minute

// FieldSelector defines a field and its metadata for configuration management.
type FieldSelector[T any] struct {
	Selector     func(*T) any // Function that returns a pointer to the field
	Description  string       // Human-readable description for CLI flags
	DefaultValue any          // Default value for the field
}

// DefaultNameFieldSelector creates a standard field selector for the workspace name.
func DefaultNameFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Name },
		Description:  "Name of the workspace and its scoring service",
		DefaultValue: v1alpha1.DefaultWorkspaceName,
	}
}

// DefaultTargetFieldSelector creates a standard field selector for the hosting target.
func DefaultTargetFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.Target },
		Description:  "Hosting target for the scoring service",
		DefaultValue: v1alpha1.TargetContainerInstance,
	}
}

// DefaultRegistryRootFieldSelector creates a standard field selector for the
// local model registry directory.
func DefaultRegistryRootFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Registry.Root },
		Description:  "Directory of the local model registry",
		DefaultValue: v1alpha1.DefaultRegistryRoot,
	}
}

// DefaultModelFieldSelector creates a standard field selector for the model reference.
func DefaultModelFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:    func(w *v1alpha1.Workspace) any { return &w.Spec.Image.Model },
		Description: "Registered model to bake into the scoring image, as 'name' or 'name:version'",
	}
}

// DefaultBaseImageFieldSelector creates a standard field selector for the base image.
func DefaultBaseImageFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Image.Base },
		Description:  "Runtime base image the scoring image builds on",
		DefaultValue: v1alpha1.DefaultBaseImage,
	}
}

// DefaultTagFieldSelector creates a standard field selector for the image tag.
func DefaultTagFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Image.Tag },
		Description:  "Tag for the scoring image",
		DefaultValue: v1alpha1.DefaultImageTag,
	}
}

// DefaultScriptFieldSelector creates a standard field selector for the scoring script path.
func DefaultScriptFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Image.Script },
		Description:  "Path to the scoring script",
		DefaultValue: v1alpha1.DefaultScoringScript,
	}
}

// DefaultDependenciesFieldSelector creates a standard field selector for the dependency
// descriptor path.
func DefaultDependenciesFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Image.Dependencies },
		Description:  "Path to the package dependency descriptor",
		DefaultValue: v1alpha1.DefaultDependencyDescriptor,
	}
}

// DefaultPortFieldSelector creates a standard field selector for the scoring endpoint port.
func DefaultPortFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.Port },
		Description:  "Port the scoring endpoint listens on",
		DefaultValue: v1alpha1.DefaultPort,
	}
}

// DefaultCPUFieldSelector creates a standard field selector for CPU sizing.
func DefaultCPUFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.CPU },
		Description:  "CPU cores to allocate to the scoring service (fractional values allowed)",
		DefaultValue: v1alpha1.DefaultCPU,
	}
}

// DefaultMemoryFieldSelector creates a standard field selector for memory sizing.
func DefaultMemoryFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.MemoryGB },
		Description:  "Memory in gigabytes to allocate to the scoring service",
		DefaultValue: v1alpha1.DefaultMemoryGB,
	}
}

// DefaultDNSLabelFieldSelector creates a standard field selector for the endpoint DNS label.
// No default value is set as the label derives from the service name.
func DefaultDNSLabelFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:    func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.DNSLabel },
		Description: "DNS label naming the service endpoint (defaults to the service name)",
	}
}

// DefaultAuthFieldSelector creates a standard field selector for the auth toggle.
func DefaultAuthFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:    func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.Auth },
		Description: "Require key authentication on the scoring endpoint",
	}
}

// DefaultTLSCertFieldSelector creates a standard field selector for the TLS certificate file.
func DefaultTLSCertFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:    func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.TLS.CertFile },
		Description: "TLS certificate file for the scoring endpoint (requires --tls-key)",
	}
}

// DefaultTLSKeyFieldSelector creates a standard field selector for the TLS key file.
func DefaultTLSKeyFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:    func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.TLS.KeyFile },
		Description: "TLS private key file for the scoring endpoint (requires --tls-cert)",
	}
}

// DefaultNamespaceFieldSelector creates a standard field selector for the Kubernetes namespace.
func DefaultNamespaceFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector:     func(w *v1alpha1.Workspace) any { return &w.Spec.Deploy.Kubernetes.Namespace },
		Description:  "Kubernetes namespace for the scoring service",
		DefaultValue: v1alpha1.DefaultNamespace,
	}
}

// DefaultKubeconfigFieldSelector creates a standard field selector for kubeconfig.
func DefaultKubeconfigFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector: func(w *v1alpha1.Workspace) any {
			return &w.Spec.Deploy.Kubernetes.Connection.Kubeconfig
		},
		Description:  "Path to kubeconfig file",
		DefaultValue: v1alpha1.DefaultKubeconfigPath,
	}
}

// DefaultContextFieldSelector creates a standard field selector for the Kubernetes context.
// No default value is set as the context depends on the hosting cluster.
func DefaultContextFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector: func(w *v1alpha1.Workspace) any {
			return &w.Spec.Deploy.Kubernetes.Connection.Context
		},
		Description: "Kubernetes context of the hosting cluster",
	}
}

// DefaultTimeoutFieldSelector creates a standard field selector for the readiness timeout.
func DefaultTimeoutFieldSelector() FieldSelector[v1alpha1.Workspace] {
	return FieldSelector[v1alpha1.Workspace]{
		Selector: func(w *v1alpha1.Workspace) any {
			return &w.Spec.Deploy.Kubernetes.Connection.Timeout
		},
		Description:  "How long to wait for the scoring service to become ready",
		DefaultValue: metav1.Duration{Duration: defaultReadinessTimeout},
	}
}

// DefaultImageFieldSelectors returns the field selectors shared by image commands.
func DefaultImageFieldSelectors() []FieldSelector[v1alpha1.Workspace] {
	return []FieldSelector[v1alpha1.Workspace]{
		DefaultModelFieldSelector(),
		DefaultBaseImageFieldSelector(),
		DefaultTagFieldSelector(),
		DefaultScriptFieldSelector(),
		DefaultDependenciesFieldSelector(),
		DefaultPortFieldSelector(),
	}
}

// DefaultConnectionFieldSelectors returns the field selectors needed to reach
// a hosting target without deploying to it.
func DefaultConnectionFieldSelectors() []FieldSelector[v1alpha1.Workspace] {
	return []FieldSelector[v1alpha1.Workspace]{
		DefaultTargetFieldSelector(),
		DefaultNamespaceFieldSelector(),
		DefaultKubeconfigFieldSelector(),
		DefaultContextFieldSelector(),
	}
}

// DefaultDeployFieldSelectors returns the field selectors shared by service commands.
func DefaultDeployFieldSelectors() []FieldSelector[v1alpha1.Workspace] {
	return []FieldSelector[v1alpha1.Workspace]{
		DefaultTargetFieldSelector(),
		DefaultPortFieldSelector(),
		DefaultCPUFieldSelector(),
		DefaultMemoryFieldSelector(),
		DefaultDNSLabelFieldSelector(),
		DefaultAuthFieldSelector(),
		DefaultTLSCertFieldSelector(),
		DefaultTLSKeyFieldSelector(),
		DefaultNamespaceFieldSelector(),
		DefaultKubeconfigFieldSelector(),
		DefaultContextFieldSelector(),
		DefaultTimeoutFieldSelector(),
	}
}
