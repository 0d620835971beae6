package v1alpha1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

const (
	// Group is the API group for MSail.
	Group = "msail.io"
	// Version is the API version for MSail.
	Version = "v1alpha1"
	// Kind is the kind for MSail workspaces.
	Kind = "Workspace"
	// APIVersion is the full API version for MSail.
	APIVersion = Group + "/" + Version
)

// --- Core Types ---

// Workspace represents an MSail workspace configuration including API metadata and desired state.
// A workspace groups the models, images, and scoring services of one project.
type Workspace struct {
	metav1.TypeMeta `json:",inline" mapstructure:",squash"`

	Spec Spec `json:"spec,omitzero" mapstructure:"spec,omitempty"`
}

// Spec defines the desired state of an MSail workspace.
type Spec struct {
	// Name identifies the workspace. It is the default image and service name.
	Name string `json:"name,omitzero"`

	Registry RegistrySpec `json:"registry,omitzero"`
	Image    ImageSpec    `json:"image,omitzero"`
	Deploy   DeploySpec   `json:"deploy,omitzero"`
}

// RegistrySpec defines where the local model registry stores artifacts and records.
type RegistrySpec struct {
	// Root is the registry directory relative to the workspace root.
	Root string `json:"root,omitzero"`
}

// ImageSpec defines how scoring service images are assembled.
type ImageSpec struct {
	// Base is the runtime base image the scoring image builds on.
	Base string `json:"base,omitzero"`
	// Name is the image repository name. Defaults to the workspace name.
	Name string `json:"name,omitzero"`
	// Tag is the image tag.
	Tag string `json:"tag,omitzero"`
	// Script is the path to the scoring script baked into the image.
	Script string `json:"script,omitzero"`
	// Dependencies is the path to the package dependency descriptor.
	Dependencies string `json:"dependencies,omitzero"`
	// Model references the registered model to bake in, as "name" or "name:version".
	// An omitted version selects the latest registered version.
	Model string `json:"model,omitzero"`
}

// DeploySpec defines how and where scoring services are hosted.
type DeploySpec struct {
	// Target selects the hosting target for the scoring service.
	Target Target `json:"target,omitzero"`
	// CPU is the CPU allocation in cores. Fractional values are allowed.
	CPU float64 `json:"cpu,omitzero"`
	// MemoryGB is the memory allocation in gigabytes. Fractional values are allowed.
	MemoryGB float64 `json:"memoryGB,omitzero"`
	// Port is the port the scoring endpoint listens on.
	Port int32 `json:"port,omitzero"`
	// DNSLabel names the service endpoint. Defaults to the service name.
	DNSLabel string `json:"dnsLabel,omitzero"`
	// Auth toggles key authentication on the scoring endpoint.
	Auth bool `json:"auth,omitzero"`

	TLS        TLSSpec        `json:"tls,omitzero"`
	Kubernetes KubernetesSpec `json:"kubernetes,omitzero"`
}

// TLSSpec defines the certificate files used to serve the scoring endpoint over TLS.
// Both files must be provided together.
type TLSSpec struct {
	CertFile string `json:"certFile,omitzero"`
	KeyFile  string `json:"keyFile,omitzero"`
}

// KubernetesSpec defines Kubernetes-target deployment options.
type KubernetesSpec struct {
	Namespace  string     `json:"namespace,omitzero"`
	Connection Connection `json:"connection,omitzero"`
}

// Connection defines connection options for the Kubernetes hosting target.
type Connection struct {
	Kubeconfig string          `default:"~/.kube/config" json:"kubeconfig,omitzero"`
	Context    string          `                         json:"context,omitzero"`
	Timeout    metav1.Duration `                         json:"timeout,omitzero"`
}
