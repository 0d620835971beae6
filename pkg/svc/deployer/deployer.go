package deployer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	docker "github.com/devantler-tech/msail/pkg/client/docker"
	"github.com/devantler-tech/msail/pkg/k8s"
	"github.com/devantler-tech/msail/pkg/registry"
)

// ServiceLabelKey marks workloads as msail scoring services on every
// hosting target. The container engine and Kubernetes share the key so
// services are discoverable the same way on both.
const ServiceLabelKey = docker.ServiceLabelKey

// Routes exposed by the serve command.
const (
	scorePath  = "/score"
	healthPath = "/health"
)

// TLS material lands at the same in-container location on every target.
// The file names match the data keys of a Kubernetes TLS secret so a
// secret volume projects them without renaming.
const (
	tlsMountPath    = "/etc/msail/tls"
	tlsCertFileName = "tls.crt"
	tlsKeyFileName  = "tls.key"
)

// Spec describes one scoring service deployment. The image carries the
// model and scoring script, so the spec only holds runtime shape: sizing,
// networking, and the serve configuration handed to the container.
type Spec struct {
	// Name is the service name and the value of the service label.
	Name string
	// Image is the scoring image reference to run.
	Image string
	// Port is the port the scoring server listens on.
	Port int32
	// CPU is the CPU allocation in cores. Fractional values are allowed.
	CPU float64
	// MemoryGB is the memory allocation in gigabytes. Fractional values are allowed.
	MemoryGB float64
	// DNSLabel names the service endpoint. Falls back to Name.
	DNSLabel string
	// Auth toggles key authentication on the scoring endpoint.
	Auth bool
	// Keys are the credentials the scoring server accepts when Auth is on.
	Keys registry.Keys
	// TLSCertFile and TLSKeyFile are PEM files served by the scoring
	// endpoint. Both must be set together and exist at deploy time.
	TLSCertFile string
	TLSKeyFile  string
	// Timeout bounds the wait for the service to answer health checks.
	// Zero selects the target's default readiness timeout.
	Timeout time.Duration
}

// TLSEnabled reports whether the deployment serves the scoring endpoint over TLS.
func (s Spec) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

// dnsLabel returns the endpoint name, falling back to the service name.
func (s Spec) dnsLabel() string {
	if s.DNSLabel != "" {
		return s.DNSLabel
	}

	return s.Name
}

// scheme returns the URL scheme the scoring endpoint answers on.
func (s Spec) scheme() string {
	if s.TLSEnabled() {
		return "https"
	}

	return "http"
}

// Deployer manages scoring services on a hosting target.
type Deployer interface {
	// Deploy creates the scoring service, or replaces it in place when one
	// with the same name is already deployed. It returns the scoring
	// endpoint once the service answers health checks.
	Deploy(ctx context.Context, spec Spec) (string, error)

	// Delete removes the scoring service from the hosting target.
	// Returns ErrServiceNotFound when no service with the name is deployed.
	Delete(ctx context.Context, name string) error

	// Exists reports whether a scoring service with the name is deployed.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of the deployed scoring services.
	List(ctx context.Context) ([]string, error)
}

// Factory creates target-specific deployers based on the workspace configuration.
type Factory interface {
	Create(ctx context.Context, workspace *v1alpha1.Workspace) (Deployer, error)
}

// DefaultFactory implements Factory for the built-in hosting targets.
type DefaultFactory struct{}

// Create selects the deployer for the workspace deploy target.
func (DefaultFactory) Create(
	_ context.Context,
	workspace *v1alpha1.Workspace,
) (Deployer, error) {
	if workspace == nil {
		return nil, fmt.Errorf(
			"workspace configuration is required: %w",
			ErrUnsupportedTarget,
		)
	}

	switch workspace.Spec.Deploy.Target {
	case v1alpha1.TargetContainerInstance:
		return createContainerInstanceDeployer()
	case v1alpha1.TargetKubernetes:
		return createKubernetesDeployer(workspace)
	default:
		return nil, fmt.Errorf(
			"%w: %s",
			ErrUnsupportedTarget,
			workspace.Spec.Deploy.Target,
		)
	}
}

func createContainerInstanceDeployer() (*ContainerInstanceDeployer, error) {
	apiClient, err := docker.GetDockerClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create container engine client: %w", err)
	}

	return NewContainerInstanceDeployer(apiClient)
}

func createKubernetesDeployer(workspace *v1alpha1.Workspace) (*KubernetesDeployer, error) {
	connection := workspace.Spec.Deploy.Kubernetes.Connection

	kubeconfigPath, err := k8s.ResolveKubeconfigPath(connection.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve kubeconfig path: %w", err)
	}

	clientset, err := k8s.NewClientset(kubeconfigPath, connection.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return NewKubernetesDeployer(clientset, workspace.Spec.Deploy.Kubernetes.Namespace), nil
}

// envPair is one serve environment entry, kept target-neutral so each
// deployer can format it for its platform.
type envPair struct {
	name  string
	value string
}

// serveEnvironment assembles the environment the serve command reads inside
// the container. The model and script paths are baked into the image, so
// only the runtime surface is set here.
func serveEnvironment(spec Spec, certPath, keyPath string) []envPair {
	env := []envPair{
		{name: "MSAIL_PORT", value: strconv.Itoa(int(spec.Port))},
	}

	if spec.Auth {
		env = append(env,
			envPair{name: "MSAIL_AUTH_ENABLED", value: "true"},
			envPair{name: "MSAIL_PRIMARY_KEY", value: spec.Keys.Primary},
			envPair{name: "MSAIL_SECONDARY_KEY", value: spec.Keys.Secondary},
		)
	}

	if certPath != "" && keyPath != "" {
		env = append(env,
			envPair{name: "MSAIL_TLS_CERT", value: certPath},
			envPair{name: "MSAIL_TLS_KEY", value: keyPath},
		)
	}

	return env
}

// scoringEndpoint formats the scoring URI for a deployed service.
func scoringEndpoint(scheme string, host string, port int) string {
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + scorePath
}
