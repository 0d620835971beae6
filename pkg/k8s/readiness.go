package k8s

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// pollInterval is the delay between readiness checks.
const pollInterval = 500 * time.Millisecond

// PollForReadiness repeatedly invokes the check function until it reports
// ready, returns an error, or the deadline expires.
//
// The check runs once immediately, so a resource that is already ready
// returns without waiting for a polling interval. Check errors and deadline
// expiry are both wrapped so callers can match on ErrTimeoutExceeded.
func PollForReadiness(
	ctx context.Context,
	deadline time.Duration,
	check func(context.Context) (bool, error),
) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ready, err := check(ctx)
		if err != nil {
			return fmt.Errorf("failed to poll for readiness: %w", err)
		}

		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to poll for readiness: %w", ErrTimeoutExceeded)
		case <-ticker.C:
		}
	}
}

// WaitForDeploymentReady polls until the deployment has all replicas updated
// and available.
//
// A deployment that does not exist yet continues polling, so callers can wait
// for a deployment that is still being created. Other API errors abort the
// poll immediately.
//
// Returns an error wrapping ErrTimeoutExceeded if the deployment is not ready
// within the deadline.
func WaitForDeploymentReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		deployment, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}

			return false, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
		}

		return isDeploymentReady(deployment), nil
	})
}

// isDeploymentReady returns true when every desired replica is updated and available.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	status := deployment.Status

	return status.Replicas > 0 &&
		status.UpdatedReplicas == status.Replicas &&
		status.AvailableReplicas == status.Replicas
}

// CheckAPIServerConnectivity performs a single ServerVersion request to verify
// the API server is reachable. Unlike WaitForAPIServerReady it does not poll,
// so it suits operations that should fail fast on a dead connection.
func CheckAPIServerConnectivity(clientset kubernetes.Interface) error {
	_, err := clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("API server connectivity check failed: %w", err)
	}

	return nil
}

// WaitForAPIServerReady waits for the Kubernetes API server to be ready.
//
// This function polls the API server by performing a ServerVersion request
// until it responds without errors. This is useful before applying resources
// to verify the cluster connection is functional.
//
// Returns an error if the API server is not ready within the deadline.
func WaitForAPIServerReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(_ context.Context) (bool, error) {
		// Use ServerVersion as a lightweight health check
		_, err := clientset.Discovery().ServerVersion()
		if err != nil {
			// Continue polling on any error - the API server is not ready yet
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return true, nil
	})
}
