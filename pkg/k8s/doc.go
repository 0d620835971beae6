// Package k8s provides Kubernetes client configuration and general-purpose utilities.
//
// This package offers reusable utilities for working with Kubernetes clusters,
// including REST client configuration, kubeconfig path resolution, DNS label
// sanitization, resource apply helpers, and readiness polling.
//
// Key features:
//   - REST config building from kubeconfig files (BuildRESTConfig)
//   - Clientset creation (NewClientset)
//   - Kubeconfig path resolution with home expansion (ResolveKubeconfigPath)
//   - DNS label sanitization (SanitizeToDNSLabel)
//   - Create-or-update apply helpers (ApplyDeployment, ApplyService, ApplySecret)
//   - Readiness polling (PollForReadiness, WaitForDeploymentReady, WaitForAPIServerReady)
//   - Pod failure diagnostics (DiagnosePodFailures)
package k8s
