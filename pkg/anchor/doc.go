// Package anchor ties the resolver, canonicalizer and root hasher into one
// pipeline.
//
// Stages run in strict order with no shared state between bundles:
//
//	identifier -> resolve -> snapshot -> canonicalize -> hash
//
// Every failure is terminal for its bundle and carries a structured error
// code together with the bundle identifier and, where known, the offending
// path. Nothing is retried.
//
//	e, err := anchor.New(anchor.WithResolver(r))
//	fp, err := e.Fingerprint(ctx, "2025-06-01")
//	fmt.Println(fp.Line()) // BUNDLE_ROOT_SHA256: ...
//
// FingerprintAll runs independent bundles in parallel, bounded by
// WithConcurrency, and Verify recomputes a bundle against a recorded
// fingerprint.
package anchor
