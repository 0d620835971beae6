package k8s

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Create-or-update apply operations.
//
// Each helper gets the current resource and either creates the desired
// object or updates the existing one in place, replacing its spec or data
// while preserving server-assigned fields.

// ApplyDeployment creates the deployment, or updates the existing deployment's
// spec, labels, and annotations when one with the same name already exists.
func ApplyDeployment(
	ctx context.Context,
	clientset kubernetes.Interface,
	desired *appsv1.Deployment,
) error {
	deployments := clientset.AppsV1().Deployments(desired.Namespace)

	existing, err := deployments.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			_, err = deployments.Create(ctx, desired, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("create deployment: %w", err)
			}

			return nil
		}

		return fmt.Errorf("get deployment: %w", err)
	}

	existing.Spec = desired.Spec
	existing.Labels = mergeStringMaps(existing.Labels, desired.Labels)
	existing.Annotations = mergeStringMaps(existing.Annotations, desired.Annotations)

	_, err = deployments.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update deployment: %w", err)
	}

	return nil
}

// ApplyService creates the service, or updates the existing service's spec,
// labels, and annotations when one with the same name already exists. The
// cluster IP assigned by the API server is preserved across updates.
func ApplyService(
	ctx context.Context,
	clientset kubernetes.Interface,
	desired *corev1.Service,
) error {
	services := clientset.CoreV1().Services(desired.Namespace)

	existing, err := services.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			_, err = services.Create(ctx, desired, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}

			return nil
		}

		return fmt.Errorf("get service: %w", err)
	}

	// ClusterIP and ClusterIPs are immutable once allocated.
	desired.Spec.ClusterIP = existing.Spec.ClusterIP
	desired.Spec.ClusterIPs = existing.Spec.ClusterIPs

	existing.Spec = desired.Spec
	existing.Labels = mergeStringMaps(existing.Labels, desired.Labels)
	existing.Annotations = mergeStringMaps(existing.Annotations, desired.Annotations)

	_, err = services.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	return nil
}

// ApplySecret creates the secret, or updates the existing secret's data and
// labels when one with the same name already exists.
func ApplySecret(
	ctx context.Context,
	clientset kubernetes.Interface,
	desired *corev1.Secret,
) error {
	secrets := clientset.CoreV1().Secrets(desired.Namespace)

	existing, err := secrets.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			_, err = secrets.Create(ctx, desired, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("create secret: %w", err)
			}

			return nil
		}

		return fmt.Errorf("get secret: %w", err)
	}

	existing.Data = desired.Data
	existing.StringData = desired.StringData
	existing.Labels = mergeStringMaps(existing.Labels, desired.Labels)

	_, err = secrets.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update secret: %w", err)
	}

	return nil
}

// mergeStringMaps copies entries from src into dst, allocating dst if needed.
// Existing keys are overwritten so desired values win over stale ones.
func mergeStringMaps(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}

	if dst == nil {
		dst = make(map[string]string, len(src))
	}

	for key, value := range src {
		dst[key] = value
	}

	return dst
}
