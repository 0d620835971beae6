package k8s_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devantler-tech/msail/pkg/k8s"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/discovery"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

var (
	errDeploymentFail = errors.New("fail")
	errPollBoom       = errors.New("boom")
)

func expectNoError(t *testing.T, err error, description string) {
	t.Helper()

	if err != nil {
		t.Fatalf("%s: unexpected error: %v", description, err)
	}
}

func expectErrorContains(t *testing.T, err error, substr, description string) {
	t.Helper()

	if err == nil {
		t.Fatalf("%s: expected error containing %q but got nil", description, substr)
	}

	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("%s: expected error to contain %q, got %q", description, substr, err.Error())
	}
}

func TestWaitForDeploymentReady(t *testing.T) {
	t.Parallel()

	t.Run("ReadyOnFirstPoll", testWaitForDeploymentReadyReady)
	t.Run("PropagatesAPIError", testWaitForDeploymentReadyAPIError)
	t.Run("TimesOutWhenNotReady", testWaitForDeploymentReadyTimeout)
	t.Run("TimesOutWhenMissing", testWaitForDeploymentReadyMissing)
}

func testWaitForDeploymentReadyReady(t *testing.T) {
	t.Helper()
	t.Parallel()

	const (
		namespace = "scoring"
		name      = "churn-svc"
	)

	client := fake.NewClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	})

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	err := k8s.WaitForDeploymentReady(ctx, client, namespace, name, 200*time.Millisecond)

	expectNoError(t, err, "waitForDeploymentReady ready state")
}

func testWaitForDeploymentReadyAPIError(t *testing.T) {
	t.Helper()
	t.Parallel()

	const (
		namespace = "scoring"
		name      = "forecast-svc"
	)

	client := fake.NewClientset()
	client.PrependReactor(
		"get",
		"deployments",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errDeploymentFail
		},
	)

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	err := k8s.WaitForDeploymentReady(ctx, client, namespace, name, 200*time.Millisecond)

	expectErrorContains(
		t,
		err,
		"failed to get deployment scoring/forecast-svc: fail",
		"waitForDeploymentReady api error",
	)
}

func testWaitForDeploymentReadyTimeout(t *testing.T) {
	t.Helper()
	t.Parallel()

	const (
		namespace = "scoring"
		name      = "stuck-svc"
	)

	client := fake.NewClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status: appsv1.DeploymentStatus{
			Replicas:        2,
			UpdatedReplicas: 1,
		},
	})

	ctx, cancel := context.WithTimeout(t.Context(), 150*time.Millisecond)
	defer cancel()

	err := k8s.WaitForDeploymentReady(ctx, client, namespace, name, 150*time.Millisecond)

	expectErrorContains(
		t, err, "failed to poll for readiness", "waitForDeploymentReady timeout",
	)

	if !errors.Is(err, k8s.ErrTimeoutExceeded) {
		t.Fatalf("expected error to wrap ErrTimeoutExceeded, got %v", err)
	}
}

func testWaitForDeploymentReadyMissing(t *testing.T) {
	t.Helper()
	t.Parallel()

	client := fake.NewClientset()

	ctx, cancel := context.WithTimeout(t.Context(), 150*time.Millisecond)
	defer cancel()

	err := k8s.WaitForDeploymentReady(ctx, client, "scoring", "missing-svc", 150*time.Millisecond)

	expectErrorContains(
		t, err, "failed to poll for readiness", "waitForDeploymentReady missing deployment",
	)
}

func TestPollForReadiness(t *testing.T) {
	t.Parallel()

	t.Run("ReturnsNilWhenReady", func(t *testing.T) {
		t.Parallel()

		err := pollForReadinessWithDefaultTimeout(t, func(context.Context) (bool, error) {
			return true, nil
		})

		expectNoError(t, err, "pollForReadiness success")
	})

	t.Run("WrapsErrors", func(t *testing.T) {
		t.Parallel()

		err := pollForReadinessWithDefaultTimeout(t, func(context.Context) (bool, error) {
			return false, errPollBoom
		})

		expectErrorContains(
			t,
			err,
			"failed to poll for readiness: boom",
			"pollForReadiness error wrap",
		)
	})

	t.Run("WrapsTimeout", func(t *testing.T) {
		t.Parallel()

		err := pollForReadinessWithDefaultTimeout(t, func(context.Context) (bool, error) {
			return false, nil
		})

		expectErrorContains(
			t,
			err,
			"failed to poll for readiness: timeout exceeded",
			"pollForReadiness timeout wrap",
		)

		if !errors.Is(err, k8s.ErrTimeoutExceeded) {
			t.Fatalf("expected error to wrap ErrTimeoutExceeded, got %v", err)
		}
	})
}

func pollForReadinessWithDefaultTimeout(
	t *testing.T,
	checker func(context.Context) (bool, error),
) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	//nolint:wrapcheck // test utility function
	return k8s.PollForReadiness(ctx, 200*time.Millisecond, checker)
}

// errAPIServerUnavailable simulates an API server connection error.
var errAPIServerUnavailable = errors.New("connection refused")

// controllableDiscoveryClient allows tests to control when API calls succeed or fail.
type controllableDiscoveryClient struct {
	*fakediscovery.FakeDiscovery

	shouldSucceed atomic.Bool
}

func newControllableClient() (*fake.Clientset, *controllableDiscoveryClient) {
	clientset := fake.NewClientset()

	fakeDiscovery, ok := clientset.Discovery().(*fakediscovery.FakeDiscovery)
	if !ok {
		panic("expected Discovery() to return *fakediscovery.FakeDiscovery")
	}

	controllable := &controllableDiscoveryClient{
		FakeDiscovery: fakeDiscovery,
	}

	return clientset, controllable
}

func (c *controllableDiscoveryClient) ServerVersion() (*version.Info, error) {
	if c.shouldSucceed.Load() {
		return &version.Info{Major: "1", Minor: "32"}, nil
	}

	return nil, errAPIServerUnavailable
}

// stubClientset wraps a fake clientset but returns our controllable discovery client.
type stubClientset struct {
	kubernetes.Interface

	discovery *controllableDiscoveryClient
}

func (s *stubClientset) Discovery() discovery.DiscoveryInterface {
	return s.discovery
}

func TestWaitForAPIServerReady(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name        string
		setupClient func() kubernetes.Interface
		timeout     time.Duration
		wantErr     bool
		errContains string
	}

	tests := []testCase{
		{
			name: "returns nil when API server responds immediately",
			setupClient: func() kubernetes.Interface {
				clientset, controllable := newControllableClient()
				controllable.shouldSucceed.Store(true)

				return &stubClientset{Interface: clientset, discovery: controllable}
			},
			timeout: 200 * time.Millisecond,
			wantErr: false,
		},
		{
			name: "returns error when timeout exceeded",
			setupClient: func() kubernetes.Interface {
				clientset, controllable := newControllableClient()
				controllable.shouldSucceed.Store(false) // never succeeds

				return &stubClientset{Interface: clientset, discovery: controllable}
			},
			timeout:     100 * time.Millisecond,
			wantErr:     true,
			errContains: "failed to poll for readiness",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client := testCase.setupClient()

			ctx, cancel := context.WithTimeout(
				t.Context(),
				testCase.timeout+100*time.Millisecond,
			)
			defer cancel()

			err := k8s.WaitForAPIServerReady(ctx, client, testCase.timeout)

			if testCase.wantErr {
				expectErrorContains(t, err, testCase.errContains, "waitForAPIServerReady")
			} else {
				expectNoError(t, err, "waitForAPIServerReady")
			}
		})
	}
}

func TestCheckAPIServerConnectivity(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name        string
		setupClient func() kubernetes.Interface
		wantErr     bool
		errContains string
	}

	tests := []testCase{
		{
			name: "returns nil when API server responds",
			setupClient: func() kubernetes.Interface {
				return fake.NewClientset()
			},
			wantErr: false,
		},
		{
			name: "returns error when API server is unavailable",
			setupClient: func() kubernetes.Interface {
				clientset, controllable := newControllableClient()
				controllable.shouldSucceed.Store(false)

				return &stubClientset{Interface: clientset, discovery: controllable}
			},
			wantErr:     true,
			errContains: "API server connectivity check failed",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client := testCase.setupClient()
			err := k8s.CheckAPIServerConnectivity(client)

			if testCase.wantErr {
				expectErrorContains(t, err, testCase.errContains, "checkAPIServerConnectivity")
			} else {
				expectNoError(t, err, "checkAPIServerConnectivity")
			}
		})
	}
}
