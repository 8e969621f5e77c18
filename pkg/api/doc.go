// Package api wires the anchor engine into the HTTP server for anchord.
//
// # Usage
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Serve reads its configuration from ANCHOR_CONFIG and ANCHOR_* variables
// (see pkg/config), builds the engine and hands lifecycle management to
// pkg/server.
//
// # Endpoints
//
// Application endpoints (rate limited):
//   - GET /v1/bundles/{id}/fingerprint - fingerprint a bundle, returns a BundleAnchor record
//   - POST /v1/verify - recompute and compare against a recorded fingerprint
//
// System endpoints (no rate limiting):
//   - GET /health  - liveness probe
//   - GET /ready   - readiness probe
//   - GET /metrics - Prometheus metrics
//
// # Verify Request
//
//	{"bundle": "2025-06-01", "fingerprint": "sha256:v1:1b9e..."}
//
// or, to also get per-file differences, with the full record:
//
//	{"bundle": "2025-06-01", "record": {"kind": "BundleAnchor", ...}}
//
// A mismatch is reported as "match": false with status 200. Bundle failures
// use the status mapping of pkg/server.
package api
