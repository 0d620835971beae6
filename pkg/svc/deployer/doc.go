// Package deployer provides the scoring service deployment service.
//
// A deployer takes a built scoring image and hosts it as an HTTP scoring
// service on a hosting target. Two targets are supported: a single
// container on a local container engine, and a Deployment fronted by a
// LoadBalancer Service on a Kubernetes cluster. Deploy replaces an
// existing service in place, so the credentials carried in the spec
// survive updates.
//
// The Factory selects the deployer from the workspace deploy target, and
// the keys helpers generate and rotate the credential pair persisted on
// the service record.
package deployer
