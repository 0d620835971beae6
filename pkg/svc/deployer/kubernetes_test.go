package deployer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/devantler-tech/msail/pkg/registry"
	"github.com/devantler-tech/msail/pkg/svc/deployer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

const testNamespace = "scoring"

// readyRollouts patches every created or updated deployment to report a
// completed rollout, standing in for the deployment controller.
func readyRollouts(clientset *fake.Clientset) {
	reaction := func(action k8stesting.Action) (bool, runtime.Object, error) {
		// Update actions satisfy CreateAction as well; both carry the object.
		createAction, ok := action.(k8stesting.CreateAction)
		if !ok {
			return false, nil, nil
		}

		if deployment, ok := createAction.GetObject().(*appsv1.Deployment); ok {
			deployment.Status = readyDeploymentStatus()
		}

		return false, nil, nil
	}

	clientset.PrependReactor("create", "deployments", reaction)
	clientset.PrependReactor("update", "deployments", reaction)
}

func readyDeploymentStatus() appsv1.DeploymentStatus {
	return appsv1.DeploymentStatus{
		Replicas:          1,
		UpdatedReplicas:   1,
		AvailableReplicas: 1,
	}
}

func scoringDeployment(name string, image string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: testNamespace,
			Labels:    map[string]string{deployer.ServiceLabelKey: name},
		},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "scoring", Image: image}},
				},
			},
		},
		Status: readyDeploymentStatus(),
	}
}

func TestKubernetesDeploy_CreatesWorkload(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()
	readyRollouts(clientset)

	kubeDeployer := deployer.NewKubernetesDeployer(clientset, testNamespace).
		WithLoadBalancerWait(time.Second)

	endpoint, err := kubeDeployer.Deploy(t.Context(), deployer.Spec{
		Name:     deployServiceName,
		Image:    deployImage,
		Port:     8080,
		CPU:      0.5,
		MemoryGB: 2,
		DNSLabel: "churn-endpoint",
		Auth:     true,
		Keys:     registry.Keys{Primary: "primary-key", Secondary: "secondary-key"},
		Timeout:  5 * time.Second,
	})

	require.NoError(t, err)
	// The fake cluster has no load balancer controller, so the in-cluster
	// endpoint is returned.
	assert.Equal(t, "http://churn-svc.scoring.svc.cluster.local:8080/score", endpoint)

	deployment, err := clientset.AppsV1().Deployments(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	require.NoError(t, err)

	require.Len(t, deployment.Spec.Template.Spec.Containers, 1)
	scoring := deployment.Spec.Template.Spec.Containers[0]
	assert.Equal(t, deployImage, scoring.Image)
	assert.Equal(t, "500m", scoring.Resources.Requests.Cpu().String())
	assert.Equal(t, "2Gi", scoring.Resources.Limits.Memory().String())
	require.NotNil(t, scoring.LivenessProbe)
	assert.Equal(t, "/health", scoring.LivenessProbe.HTTPGet.Path)
	assert.Contains(
		t, scoring.Env,
		corev1.EnvVar{Name: "MSAIL_PRIMARY_KEY", Value: "primary-key"},
	)

	service, err := clientset.CoreV1().Services(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, corev1.ServiceTypeLoadBalancer, service.Spec.Type)
	assert.Equal(t, "churn-endpoint", service.Annotations["msail.io/dns-label"])

	namespace, err := clientset.CoreV1().Namespaces().
		Get(t.Context(), testNamespace, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "msail", namespace.Labels["app.kubernetes.io/managed-by"])
}

func TestKubernetesDeploy_UpdatesExistingWorkload(t *testing.T) {
	t.Parallel()

	existingService := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      deployServiceName,
			Namespace: testNamespace,
		},
		Spec: corev1.ServiceSpec{ClusterIP: "10.0.0.10"},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{IP: "203.0.113.10"}},
			},
		},
	}

	clientset := fake.NewClientset(
		scoringDeployment(deployServiceName, "msail-churn:v1"),
		existingService,
	)
	readyRollouts(clientset)

	kubeDeployer := deployer.NewKubernetesDeployer(clientset, testNamespace)

	endpoint, err := kubeDeployer.Deploy(t.Context(), deployer.Spec{
		Name:    deployServiceName,
		Image:   deployImage,
		Port:    8080,
		Timeout: 5 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, "http://203.0.113.10:8080/score", endpoint)

	deployment, err := clientset.AppsV1().Deployments(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, deployImage, deployment.Spec.Template.Spec.Containers[0].Image)

	service, err := clientset.CoreV1().Services(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.10", service.Spec.ClusterIP)
}

func TestKubernetesDeploy_TLS(t *testing.T) {
	t.Parallel()

	certFile := writeTempFile(t, "server.crt", "cert-pem")
	keyFile := writeTempFile(t, "server.key", "key-pem")

	clientset := fake.NewClientset()
	readyRollouts(clientset)

	kubeDeployer := deployer.NewKubernetesDeployer(clientset, testNamespace).
		WithLoadBalancerWait(time.Second)

	endpoint, err := kubeDeployer.Deploy(t.Context(), deployer.Spec{
		Name:        deployServiceName,
		Image:       deployImage,
		Port:        8443,
		TLSCertFile: certFile,
		TLSKeyFile:  keyFile,
		Timeout:     5 * time.Second,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(endpoint, "https://"))

	secret, err := clientset.CoreV1().Secrets(testNamespace).
		Get(t.Context(), deployServiceName+"-tls", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, corev1.SecretTypeTLS, secret.Type)
	assert.Equal(t, []byte("cert-pem"), secret.Data[corev1.TLSCertKey])
	assert.Equal(t, []byte("key-pem"), secret.Data[corev1.TLSPrivateKeyKey])

	deployment, err := clientset.AppsV1().Deployments(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	require.NoError(t, err)

	scoring := deployment.Spec.Template.Spec.Containers[0]
	assert.Contains(t, scoring.VolumeMounts, corev1.VolumeMount{
		Name:      "tls",
		MountPath: "/etc/msail/tls",
		ReadOnly:  true,
	})
	assert.Contains(
		t, scoring.Env,
		corev1.EnvVar{Name: "MSAIL_TLS_CERT", Value: "/etc/msail/tls/tls.crt"},
	)
	assert.Equal(t, corev1.URISchemeHTTPS, scoring.LivenessProbe.HTTPGet.Scheme)
}

func TestKubernetesDelete(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		scoringDeployment(deployServiceName, deployImage),
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{
				Name:      deployServiceName,
				Namespace: testNamespace,
			},
		},
		&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:      deployServiceName + "-tls",
				Namespace: testNamespace,
			},
		},
	)

	kubeDeployer := deployer.NewKubernetesDeployer(clientset, testNamespace)

	require.NoError(t, kubeDeployer.Delete(t.Context(), deployServiceName))

	_, err := clientset.AppsV1().Deployments(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	_, err = clientset.CoreV1().Services(testNamespace).
		Get(t.Context(), deployServiceName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	_, err = clientset.CoreV1().Secrets(testNamespace).
		Get(t.Context(), deployServiceName+"-tls", metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestKubernetesDelete_NotFound(t *testing.T) {
	t.Parallel()

	kubeDeployer := deployer.NewKubernetesDeployer(fake.NewClientset(), testNamespace)

	err := kubeDeployer.Delete(t.Context(), deployServiceName)

	require.ErrorIs(t, err, deployer.ErrServiceNotFound)
}

func TestKubernetesExists(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(scoringDeployment(deployServiceName, deployImage))
	kubeDeployer := deployer.NewKubernetesDeployer(clientset, testNamespace)

	exists, err := kubeDeployer.Exists(t.Context(), deployServiceName)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = kubeDeployer.Exists(t.Context(), "missing-svc")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestKubernetesList(t *testing.T) {
	t.Parallel()

	unlabeled := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "unrelated", Namespace: testNamespace},
	}

	clientset := fake.NewClientset(
		scoringDeployment("churn-svc", deployImage),
		scoringDeployment("forecast-svc", deployImage),
		unlabeled,
	)
	kubeDeployer := deployer.NewKubernetesDeployer(clientset, testNamespace)

	services, err := kubeDeployer.List(t.Context())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"churn-svc", "forecast-svc"}, services)
}
