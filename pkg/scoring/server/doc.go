// Package server exposes a scoring runtime over HTTP. It is the process that
// runs inside a scoring image: configuration comes from MSAIL_* environment
// variables, scoring requests arrive on POST /score, and liveness probes hit
// GET /health.
package server
