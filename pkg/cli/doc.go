// Package cli implements the anchor command-line interface.
//
// # Overview
//
// anchor computes one deterministic fingerprint over a dated publication
// bundle (a daily or weekly markdown log plus its diagnostic images) so the
// bundle can later be shown to be unaltered. stdout carries only the result
// line; structured logs and errors go to stderr.
//
// # Commands
//
// fingerprint (alias hash) - Fingerprint one bundle:
//
//	anchor fingerprint 2025-06-01 [--record FILE|cm://ns/name] [--format yaml|json|table]
//
// Prints exactly "BUNDLE_ROOT_SHA256: <hex>".
//
// batch - Fingerprint bundles in parallel:
//
//	anchor batch 2025-06-01 2025-06-02 ...
//
// verify - Compare against a recorded fingerprint:
//
//	anchor verify 2025-06-01 --expected "BUNDLE_ROOT_SHA256: <hex>"
//	anchor verify 2025-06-01 --record anchors/2025-06-01.yaml
//
// prove, check-proof - Single-artifact inclusion proofs:
//
//	anchor prove 2025-06-01 --path assets/diagnostic/2025-06-01_W63.png > proof.yaml
//	anchor check-proof --proof proof.yaml --file 2025-06-01_W63.png
//
// rollup - Weekly root over recorded daily roots:
//
//	anchor rollup --week 2025-W05 | --this-week | --last7
//
// push - Publish the bundle as an OCI artifact:
//
//	anchor push 2025-06-01 --registry ghcr.io --repository themeradar/anchors
//
// # Global Flags
//
//	--config, -c          Configuration file (ANCHOR_CONFIG)
//	--root                Bundle root (ANCHOR_ROOT, default ".")
//	--algorithm           sha256 or blake3 (ANCHOR_ALGORITHM)
//	--identifier-kind     daily or weekly (ANCHOR_IDENTIFIER_KIND)
//	--case-insensitive    Fold path case (ANCHOR_CASE_INSENSITIVE)
//	--concurrency         Parallel bundles for batch (ANCHOR_CONCURRENCY)
//	--log-level           debug, info, warn, error (LOG_LEVEL)
//	--kubeconfig          For cm:// sources and destinations (KUBECONFIG)
//
// # Exit Status
//
// 0 on success, 1 on any failure. Failures are printed as
//
//	anchor: bundle <id>: [<CODE>] <message>
//
// where CODE is one of INVALID_IDENTIFIER, BUNDLE_NOT_FOUND,
// INCOMPLETE_BUNDLE, PATH_ESCAPE, DUPLICATE_PATH, EMPTY_BUNDLE, IO_FAILURE
// or FINGERPRINT_MISMATCH.
package cli
