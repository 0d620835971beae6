package k8s_test

import (
	"errors"
	"testing"

	"github.com/devantler-tech/msail/pkg/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

var errApplyBoom = errors.New("boom")

func testDeployment(namespace, name, image string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{"app": name},
		},
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": name},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{"app": name},
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{Name: name, Image: image},
					},
				},
			},
		},
	}
}

func TestApplyDeployment_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset()
	desired := testDeployment("scoring", "churn-svc", "msail/churn:1")

	err := k8s.ApplyDeployment(t.Context(), client, desired)
	require.NoError(t, err)

	created, err := client.AppsV1().
		Deployments("scoring").
		Get(t.Context(), "churn-svc", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "msail/churn:1", created.Spec.Template.Spec.Containers[0].Image)
}

func TestApplyDeployment_UpdatesExisting(t *testing.T) {
	t.Parallel()

	existing := testDeployment("scoring", "churn-svc", "msail/churn:1")
	existing.Labels["operator"] = "manual"

	client := fake.NewClientset(existing)

	desired := testDeployment("scoring", "churn-svc", "msail/churn:2")

	err := k8s.ApplyDeployment(t.Context(), client, desired)
	require.NoError(t, err)

	updated, err := client.AppsV1().
		Deployments("scoring").
		Get(t.Context(), "churn-svc", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "msail/churn:2", updated.Spec.Template.Spec.Containers[0].Image)
	// Labels not managed by the desired object survive the update.
	assert.Equal(t, "manual", updated.Labels["operator"])
	assert.Equal(t, "churn-svc", updated.Labels["app"])
}

func TestApplyDeployment_GetError(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset()
	client.PrependReactor(
		"get",
		"deployments",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errApplyBoom
		},
	)

	err := k8s.ApplyDeployment(t.Context(), client, testDeployment("scoring", "svc", "img"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get deployment")
}

func testService(namespace, name string, port int32) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{"app": name},
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeLoadBalancer,
			Selector: map[string]string{"app": name},
			Ports: []corev1.ServicePort{
				{Name: "http", Port: port},
			},
		},
	}
}

func TestApplyService_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset()

	err := k8s.ApplyService(t.Context(), client, testService("scoring", "churn-svc", 8080))
	require.NoError(t, err)

	created, err := client.CoreV1().
		Services("scoring").
		Get(t.Context(), "churn-svc", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, corev1.ServiceTypeLoadBalancer, created.Spec.Type)
	assert.Equal(t, int32(8080), created.Spec.Ports[0].Port)
}

func TestApplyService_PreservesClusterIP(t *testing.T) {
	t.Parallel()

	existing := testService("scoring", "churn-svc", 8080)
	existing.Spec.ClusterIP = "10.96.0.42"
	existing.Spec.ClusterIPs = []string{"10.96.0.42"}

	client := fake.NewClientset(existing)

	err := k8s.ApplyService(t.Context(), client, testService("scoring", "churn-svc", 9090))
	require.NoError(t, err)

	updated, err := client.CoreV1().
		Services("scoring").
		Get(t.Context(), "churn-svc", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(9090), updated.Spec.Ports[0].Port)
	assert.Equal(t, "10.96.0.42", updated.Spec.ClusterIP)
}

func TestApplyService_GetError(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset()
	client.PrependReactor(
		"get",
		"services",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errApplyBoom
		},
	)

	err := k8s.ApplyService(t.Context(), client, testService("scoring", "svc", 8080))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get service")
}

func testSecret(namespace, name string, data map[string][]byte) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Type: corev1.SecretTypeTLS,
		Data: data,
	}
}

func TestApplySecret_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset()
	desired := testSecret("scoring", "churn-svc-tls", map[string][]byte{
		"tls.crt": []byte("cert"),
		"tls.key": []byte("key"),
	})

	err := k8s.ApplySecret(t.Context(), client, desired)
	require.NoError(t, err)

	created, err := client.CoreV1().
		Secrets("scoring").
		Get(t.Context(), "churn-svc-tls", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("cert"), created.Data["tls.crt"])
}

func TestApplySecret_UpdatesData(t *testing.T) {
	t.Parallel()

	existing := testSecret("scoring", "churn-svc-tls", map[string][]byte{
		"tls.crt": []byte("old-cert"),
		"tls.key": []byte("old-key"),
	})

	client := fake.NewClientset(existing)

	desired := testSecret("scoring", "churn-svc-tls", map[string][]byte{
		"tls.crt": []byte("new-cert"),
		"tls.key": []byte("new-key"),
	})

	err := k8s.ApplySecret(t.Context(), client, desired)
	require.NoError(t, err)

	updated, err := client.CoreV1().
		Secrets("scoring").
		Get(t.Context(), "churn-svc-tls", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("new-cert"), updated.Data["tls.crt"])
}

func TestApplySecret_GetError(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset()
	client.PrependReactor(
		"get",
		"secrets",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errApplyBoom
		},
	)

	err := k8s.ApplySecret(t.Context(), client, testSecret("scoring", "tls", nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get secret")
}
