package deployer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/fsutil"
	"github.com/devantler-tech/msail/pkg/k8s"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
)

const (
	// dnsLabelAnnotation carries the requested endpoint name on the Service
	// so a cloud controller can register it.
	dnsLabelAnnotation = v1alpha1.Group + "/dns-label"

	// managedByLabelKey marks namespaces created for scoring services.
	managedByLabelKey   = "app.kubernetes.io/managed-by"
	managedByLabelValue = "msail"

	// scoringContainerName names the single container in the scoring pod.
	scoringContainerName = "scoring"

	// tlsVolumeName names the secret volume that projects the TLS material.
	tlsVolumeName = "tls"

	// defaultKubernetesReadyTimeout bounds the rollout wait when the spec
	// does not set one.
	defaultKubernetesReadyTimeout = 5 * time.Minute

	// defaultLoadBalancerWait bounds the wait for a load balancer address
	// before falling back to the in-cluster endpoint.
	defaultLoadBalancerWait = 30 * time.Second

	// Liveness probe timing. Model loading happens at container start, so
	// the first probe is delayed.
	livenessInitialDelaySeconds = 10
	livenessPeriodSeconds       = 5

	// millicoresPerCore converts cores to the milliCPU resource unit.
	millicoresPerCore = 1000
	// bytesPerGB converts gigabytes to bytes.
	bytesPerGB = 1 << 30
)

// KubernetesDeployer hosts scoring services as single-replica Deployments
// fronted by LoadBalancer Services on a Kubernetes cluster.
type KubernetesDeployer struct {
	clientset        kubernetes.Interface
	namespace        string
	loadBalancerWait time.Duration
}

var _ Deployer = (*KubernetesDeployer)(nil)

// NewKubernetesDeployer creates a deployer for the given cluster and
// namespace. An empty namespace selects the default namespace.
func NewKubernetesDeployer(clientset kubernetes.Interface, namespace string) *KubernetesDeployer {
	if namespace == "" {
		namespace = v1alpha1.DefaultNamespace
	}

	return &KubernetesDeployer{
		clientset:        clientset,
		namespace:        namespace,
		loadBalancerWait: defaultLoadBalancerWait,
	}
}

// WithLoadBalancerWait overrides how long Deploy waits for a load balancer
// address before falling back to the in-cluster endpoint.
func (d *KubernetesDeployer) WithLoadBalancerWait(wait time.Duration) *KubernetesDeployer {
	d.loadBalancerWait = wait

	return d
}

// Deploy applies the namespace, TLS secret, deployment, and service for the
// scoring workload, then waits for the rollout. Existing objects are
// updated in place, so a redeploy rolls the workload without recreating the
// service.
func (d *KubernetesDeployer) Deploy(ctx context.Context, spec Spec) (string, error) {
	err := k8s.EnsureNamespace(ctx, d.clientset, d.namespace, map[string]string{
		managedByLabelKey: managedByLabelValue,
	})
	if err != nil {
		return "", fmt.Errorf("failed to ensure namespace: %w", err)
	}

	certPath, keyPath, err := d.applyTLSSecret(ctx, spec)
	if err != nil {
		return "", err
	}

	err = k8s.ApplyDeployment(ctx, d.clientset, d.buildDeployment(spec, certPath, keyPath))
	if err != nil {
		return "", fmt.Errorf("failed to apply deployment: %w", err)
	}

	err = k8s.ApplyService(ctx, d.clientset, d.buildService(spec))
	if err != nil {
		return "", fmt.Errorf("failed to apply service: %w", err)
	}

	timeout := spec.Timeout
	if timeout == 0 {
		timeout = defaultKubernetesReadyTimeout
	}

	err = k8s.WaitForDeploymentReady(ctx, d.clientset, d.namespace, spec.Name, timeout)
	if err != nil {
		return "", fmt.Errorf("deployment did not become ready: %w", err)
	}

	return d.resolveEndpoint(ctx, spec)
}

// Delete removes the deployment, service, and TLS secret for the name.
func (d *KubernetesDeployer) Delete(ctx context.Context, name string) error {
	exists, err := d.Exists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	err = d.clientset.AppsV1().Deployments(d.namespace).
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete deployment: %w", err)
	}

	err = d.clientset.CoreV1().Services(d.namespace).
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	err = d.clientset.CoreV1().Secrets(d.namespace).
		Delete(ctx, tlsSecretName(name), metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete tls secret: %w", err)
	}

	return nil
}

// Exists reports whether the scoring deployment is present in the namespace.
func (d *KubernetesDeployer) Exists(ctx context.Context, name string) (bool, error) {
	_, err := d.clientset.AppsV1().Deployments(d.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get deployment: %w", err)
	}

	return true, nil
}

// List returns the scoring services deployed in the namespace.
func (d *KubernetesDeployer) List(ctx context.Context) ([]string, error) {
	deployments, err := d.clientset.AppsV1().Deployments(d.namespace).
		List(ctx, metav1.ListOptions{LabelSelector: ServiceLabelKey})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	names := make([]string, 0, len(deployments.Items))

	for _, deployment := range deployments.Items {
		name := deployment.Labels[ServiceLabelKey]
		if name == "" {
			name = deployment.Name
		}

		names = append(names, name)
	}

	return names, nil
}

// applyTLSSecret stores the TLS material as a kubernetes.io/tls secret and
// returns the in-container paths the secret volume projects it to.
func (d *KubernetesDeployer) applyTLSSecret(
	ctx context.Context,
	spec Spec,
) (string, string, error) {
	if !spec.TLSEnabled() {
		return "", "", nil
	}

	certData, err := readTLSFile(spec.TLSCertFile)
	if err != nil {
		return "", "", err
	}

	keyData, err := readTLSFile(spec.TLSKeyFile)
	if err != nil {
		return "", "", err
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      tlsSecretName(spec.Name),
			Namespace: d.namespace,
			Labels:    serviceLabels(spec.Name),
		},
		Type: corev1.SecretTypeTLS,
		Data: map[string][]byte{
			corev1.TLSCertKey:       certData,
			corev1.TLSPrivateKeyKey: keyData,
		},
	}

	err = k8s.ApplySecret(ctx, d.clientset, secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to apply tls secret: %w", err)
	}

	certPath := path.Join(tlsMountPath, corev1.TLSCertKey)
	keyPath := path.Join(tlsMountPath, corev1.TLSPrivateKeyKey)

	return certPath, keyPath, nil
}

// buildDeployment renders the scoring workload: one replica, requests and
// limits from the spec sizing, a liveness probe on the health route, and
// the TLS secret projected when configured.
func (d *KubernetesDeployer) buildDeployment(
	spec Spec,
	certPath string,
	keyPath string,
) *appsv1.Deployment {
	replicas := int32(1)

	scoring := corev1.Container{
		Name:  scoringContainerName,
		Image: spec.Image,
		Ports: []corev1.ContainerPort{
			{ContainerPort: spec.Port, Protocol: corev1.ProtocolTCP},
		},
		Env: buildEnvVars(spec, certPath, keyPath),
		Resources: corev1.ResourceRequirements{
			Requests: resourceList(spec),
			Limits:   resourceList(spec),
		},
		LivenessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path:   healthPath,
					Port:   intstr.FromInt32(spec.Port),
					Scheme: probeScheme(spec),
				},
			},
			InitialDelaySeconds: livenessInitialDelaySeconds,
			PeriodSeconds:       livenessPeriodSeconds,
		},
	}

	podSpec := corev1.PodSpec{}

	if spec.TLSEnabled() {
		scoring.VolumeMounts = []corev1.VolumeMount{
			{Name: tlsVolumeName, MountPath: tlsMountPath, ReadOnly: true},
		}
		podSpec.Volumes = []corev1.Volume{
			{
				Name: tlsVolumeName,
				VolumeSource: corev1.VolumeSource{
					Secret: &corev1.SecretVolumeSource{
						SecretName: tlsSecretName(spec.Name),
					},
				},
			},
		}
	}

	podSpec.Containers = []corev1.Container{scoring}

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: d.namespace,
			Labels:    serviceLabels(spec.Name),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: serviceLabels(spec.Name)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: serviceLabels(spec.Name)},
				Spec:       podSpec,
			},
		},
	}
}

// buildService fronts the workload with a LoadBalancer service carrying the
// DNS label annotation.
func (d *KubernetesDeployer) buildService(spec Spec) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: d.namespace,
			Labels:    serviceLabels(spec.Name),
			Annotations: map[string]string{
				dnsLabelAnnotation: k8s.SanitizeToDNSLabel(spec.dnsLabel()),
			},
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeLoadBalancer,
			Selector: serviceLabels(spec.Name),
			Ports: []corev1.ServicePort{
				{
					Name:       spec.scheme(),
					Port:       spec.Port,
					TargetPort: intstr.FromInt32(spec.Port),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
}

// resolveEndpoint waits briefly for a load balancer address. Clusters
// without a load balancer controller never assign one, so after the wait
// the in-cluster service DNS name is returned instead.
func (d *KubernetesDeployer) resolveEndpoint(ctx context.Context, spec Spec) (string, error) {
	var host string

	err := k8s.PollForReadiness(ctx, d.loadBalancerWait, func(ctx context.Context) (bool, error) {
		service, err := d.clientset.CoreV1().Services(d.namespace).
			Get(ctx, spec.Name, metav1.GetOptions{})
		if err != nil {
			return false, fmt.Errorf("failed to get service: %w", err)
		}

		host = loadBalancerHost(service)

		return host != "", nil
	})
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, k8s.ErrTimeoutExceeded) {
			return "", fmt.Errorf("failed to resolve service endpoint: %w", err)
		}

		host = fmt.Sprintf("%s.%s.svc.cluster.local", spec.Name, d.namespace)
	}

	return scoringEndpoint(spec.scheme(), host, int(spec.Port)), nil
}

// loadBalancerHost returns the first assigned ingress address of the service.
func loadBalancerHost(service *corev1.Service) string {
	for _, ingress := range service.Status.LoadBalancer.Ingress {
		if ingress.IP != "" {
			return ingress.IP
		}

		if ingress.Hostname != "" {
			return ingress.Hostname
		}
	}

	return ""
}

// serviceLabels returns the selector labels for a scoring service.
func serviceLabels(name string) map[string]string {
	return map[string]string{ServiceLabelKey: name}
}

// tlsSecretName returns the name of the TLS secret for a service.
func tlsSecretName(name string) string {
	return name + "-tls"
}

// buildEnvVars formats the serve environment for a pod container.
func buildEnvVars(spec Spec, certPath, keyPath string) []corev1.EnvVar {
	pairs := serveEnvironment(spec, certPath, keyPath)
	env := make([]corev1.EnvVar, 0, len(pairs))

	for _, pair := range pairs {
		env = append(env, corev1.EnvVar{Name: pair.name, Value: pair.value})
	}

	return env
}

// resourceList converts the spec sizing to Kubernetes resource quantities.
func resourceList(spec Spec) corev1.ResourceList {
	quantities := corev1.ResourceList{}

	if spec.CPU > 0 {
		quantities[corev1.ResourceCPU] = *resource.NewMilliQuantity(
			int64(spec.CPU*millicoresPerCore), resource.DecimalSI,
		)
	}

	if spec.MemoryGB > 0 {
		quantities[corev1.ResourceMemory] = *resource.NewQuantity(
			int64(spec.MemoryGB*bytesPerGB), resource.BinarySI,
		)
	}

	return quantities
}

// probeScheme returns the scheme the liveness probe uses. The kubelet skips
// certificate verification on HTTPS probes.
func probeScheme(spec Spec) corev1.URIScheme {
	if spec.TLSEnabled() {
		return corev1.URISchemeHTTPS
	}

	return corev1.URISchemeHTTP
}

// readTLSFile loads a PEM file, expanding a leading tilde first.
func readTLSFile(file string) ([]byte, error) {
	expanded, err := fsutil.ExpandHomePath(file)
	if err != nil {
		return nil, fmt.Errorf("failed to expand tls file path: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(expanded))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTLSFileMissing, file)
	}

	return data, nil
}
