// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Bundle failures carry one of the bundle error codes together with the
// bundle identifier and, where applicable, the offending relative path:
//
//	err := errors.ForBundle(
//	    errors.ErrCodeIncompleteBundle,
//	    "2025-06-01",
//	    "assets/diagnostic/2025-06-01_W63.png",
//	    "referenced diagnostic artifact is missing",
//	    nil,
//	)
//
// Callers match on kinds with HasCode or CodeOf:
//
//	if errors.HasCode(err, errors.ErrCodeBundleNotFound) {
//	    // the publish step never ran
//	}
package errors
