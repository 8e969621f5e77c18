// Package server provides the HTTP server shared by anchor services.
//
// The server carries no anchor semantics itself: API handlers are supplied
// with WithHandler, keyed by net/http ServeMux patterns, and wrapped with a
// fixed middleware chain.
//
// # Middleware
//
// From outermost to innermost:
//
//   - Prometheus request metrics, labelled by route pattern
//   - API version negotiation (Accept: application/vnd.themeradar.anchor.v1+json)
//   - Request IDs (X-Request-Id, UUID, generated when absent or malformed)
//   - Panic recovery
//   - Token bucket rate limiting (golang.org/x/time/rate)
//   - Debug request logging
//
// # System Endpoints
//
//	GET /         service name, version and routes
//	GET /health   liveness
//	GET /ready    readiness; 503 until Start and during shutdown
//	GET /metrics  Prometheus metrics
//
// System endpoints are not rate limited.
//
// # Errors
//
// Errors are JSON ErrorResponse documents. WriteErrorFromErr maps the codes
// of pkg/errors to HTTP status codes:
//
//	INVALID_IDENTIFIER, INVALID_REQUEST          400
//	BUNDLE_NOT_FOUND, NOT_FOUND                  404
//	FINGERPRINT_MISMATCH                         409
//	INCOMPLETE_BUNDLE, PATH_ESCAPE,
//	DUPLICATE_PATH, EMPTY_BUNDLE                 422
//	TIMEOUT                                      504
//	IO_FAILURE and everything else               500
//
// # Usage
//
//	s := server.New(
//	    server.WithName("anchord"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "GET /v1/bundles/{id}/fingerprint": h.Fingerprint,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// Run stops gracefully on SIGINT or SIGTERM. The PORT and
// SHUTDOWN_TIMEOUT_SECONDS environment variables override the defaults.
package server
