package v1alpha1

const (
	// DefaultWorkspaceName is the workspace name used when none is configured.
	DefaultWorkspaceName = "msail"
	// DefaultRegistryRoot is the default directory for the local model registry.
	DefaultRegistryRoot = ".msail"
	// DefaultBaseImage is the default runtime base image for scoring images.
	DefaultBaseImage = "ghcr.io/devantler-tech/msail-runtime:latest"
	// DefaultImageTag is the default scoring image tag.
	DefaultImageTag = "latest"
	// DefaultScoringScript is the default scoring script filename.
	DefaultScoringScript = "score.lua"
	// DefaultDependencyDescriptor is the default dependency descriptor filename.
	DefaultDependencyDescriptor = "dependencies.yaml"
	// DefaultPort is the default scoring endpoint port.
	DefaultPort int32 = 8080
	// DefaultCPU is the default CPU allocation in cores.
	DefaultCPU = 1.0
	// DefaultMemoryGB is the default memory allocation in gigabytes.
	DefaultMemoryGB = 1.0
	// DefaultNamespace is the default Kubernetes namespace for scoring services.
	DefaultNamespace = "default"
	// DefaultKubeconfigPath is the default path to the kubeconfig file.
	DefaultKubeconfigPath = "~/.kube/config"
)

// SetDefaults fills zero-valued fields with workspace defaults. It is idempotent
// and safe to call on configurations loaded from disk or built programmatically.
func (w *Workspace) SetDefaults() {
	if w.Kind == "" {
		w.Kind = Kind
	}

	if w.APIVersion == "" {
		w.APIVersion = APIVersion
	}

	if w.Spec.Name == "" {
		w.Spec.Name = DefaultWorkspaceName
	}

	if w.Spec.Registry.Root == "" {
		w.Spec.Registry.Root = DefaultRegistryRoot
	}

	w.Spec.Image.setDefaults(w.Spec.Name)
	w.Spec.Deploy.setDefaults(w.Spec.Name)
}

func (s *ImageSpec) setDefaults(workspaceName string) {
	if s.Base == "" {
		s.Base = DefaultBaseImage
	}

	if s.Name == "" {
		s.Name = workspaceName
	}

	if s.Tag == "" {
		s.Tag = DefaultImageTag
	}

	if s.Script == "" {
		s.Script = DefaultScoringScript
	}

	if s.Dependencies == "" {
		s.Dependencies = DefaultDependencyDescriptor
	}
}

func (s *DeploySpec) setDefaults(workspaceName string) {
	if s.Target == "" {
		s.Target = TargetContainerInstance
	}

	if s.CPU == 0 {
		s.CPU = DefaultCPU
	}

	if s.MemoryGB == 0 {
		s.MemoryGB = DefaultMemoryGB
	}

	if s.Port == 0 {
		s.Port = DefaultPort
	}

	if s.DNSLabel == "" {
		s.DNSLabel = workspaceName
	}

	if s.Kubernetes.Namespace == "" {
		s.Kubernetes.Namespace = DefaultNamespace
	}

	if s.Kubernetes.Connection.Kubeconfig == "" {
		s.Kubernetes.Connection.Kubeconfig = DefaultKubeconfigPath
	}
}
