package v1alpha1

import (
	"fmt"
	"regexp"
	"slices"
)

// nameRegex matches DNS-1123 subdomain names: lowercase alphanumeric with optional hyphens.
// Must start with a letter, end with alphanumeric, and be at most 63 characters.
// See: https://kubernetes.io/docs/concepts/overview/working-with-objects/names/#dns-subdomain-names
var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// NameMaxLength is the maximum length for workspace, service, and DNS label names.
const NameMaxLength = 63

// maxPort is the highest valid TCP port number.
const maxPort = 65535

// ValidateName validates that a workspace, service, or DNS label name is DNS-1123
// compliant. These names end up in container names, Kubernetes object names, and
// DNS labels, which all require DNS-1123 subdomain names.
//
// Returns nil if the name is valid, or an error describing the validation failure.
func ValidateName(name string) error {
	if name == "" {
		return nil // Empty names are allowed (means use default)
	}

	if len(name) > NameMaxLength {
		return fmt.Errorf(
			"%w: %q exceeds max %d characters (got %d)",
			ErrNameTooLong, name, NameMaxLength, len(name),
		)
	}

	if !nameRegex.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must be DNS-1123 compliant "+
				"(lowercase letters, numbers, and hyphens; must start with a letter; "+
				"must not end with a hyphen)",
			ErrNameInvalid, name,
		)
	}

	return nil
}

// Validate checks the workspace configuration for invalid values.
// It validates names, the hosting target, resource sizing, the port range,
// TLS file pairing, and the model reference syntax.
func (w *Workspace) Validate() error {
	if err := ValidateName(w.Spec.Name); err != nil {
		return err
	}

	if err := ValidateName(w.Spec.Deploy.DNSLabel); err != nil {
		return err
	}

	if err := w.Spec.Deploy.validate(); err != nil {
		return err
	}

	if w.Spec.Image.Model != "" {
		if _, _, err := ParseModelRef(w.Spec.Image.Model); err != nil {
			return err
		}
	}

	return nil
}

func (s *DeploySpec) validate() error {
	if s.Target != "" && !slices.Contains(ValidTargets(), s.Target) {
		return fmt.Errorf("%w: %q (valid targets: %v)", ErrInvalidTarget, s.Target, ValidTargets())
	}

	if s.CPU < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidCPU, s.CPU)
	}

	if s.MemoryGB < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidMemory, s.MemoryGB)
	}

	if s.Port < 0 || s.Port > maxPort {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, s.Port)
	}

	if (s.TLS.CertFile == "") != (s.TLS.KeyFile == "") {
		return fmt.Errorf(
			"%w: certFile=%q keyFile=%q",
			ErrTLSFilesIncomplete, s.TLS.CertFile, s.TLS.KeyFile,
		)
	}

	return nil
}
