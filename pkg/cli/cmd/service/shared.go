package service

import (
	"fmt"
	"io"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
)

// openRegistry opens the workspace model registry.
func openRegistry(cfg *v1alpha1.Workspace) (*registry.Registry, error) {
	reg, err := registry.Open(cfg.Spec.Registry.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open model registry: %w", err)
	}

	return reg, nil
}

// newDeploySpec maps the workspace configuration to a deployment spec for the
// named service.
func newDeploySpec(cfg *v1alpha1.Workspace, serviceName string, keys registry.Keys) deployer.Spec {
	dnsLabel := cfg.Spec.Deploy.DNSLabel
	if dnsLabel == cfg.Spec.Name {
		// The defaulted label tracks the deployed service, not the workspace.
		dnsLabel = serviceName
	}

	return deployer.Spec{
		Name:        serviceName,
		Image:       cfg.Spec.Image.Name + ":" + cfg.Spec.Image.Tag,
		Port:        cfg.Spec.Deploy.Port,
		CPU:         cfg.Spec.Deploy.CPU,
		MemoryGB:    cfg.Spec.Deploy.MemoryGB,
		DNSLabel:    dnsLabel,
		Auth:        cfg.Spec.Deploy.Auth,
		Keys:        keys,
		TLSCertFile: cfg.Spec.Deploy.TLS.CertFile,
		TLSKeyFile:  cfg.Spec.Deploy.TLS.KeyFile,
		Timeout:     cfg.Spec.Deploy.Kubernetes.Connection.Timeout.Duration,
	}
}

// displayConnection prints the scoring endpoint and, when authentication is
// enabled, the credentials clients must present.
func displayConnection(writer io.Writer, service registry.Service) {
	_, _ = fmt.Fprintf(writer, "Endpoint:      %s\n", service.Endpoint)

	if service.AuthEnabled {
		_, _ = fmt.Fprintf(writer, "Primary key:   %s\n", service.Keys.Primary)
		_, _ = fmt.Fprintf(writer, "Secondary key: %s\n", service.Keys.Secondary)
	}
}
