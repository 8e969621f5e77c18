// Package record defines the serializable anchor resources: the fingerprint
// of a bundle, a weekly rollup and a verification outcome.
//
// Records carry a type header and are written through the serializer
// package to a file, stdout or a ConfigMap, any of which can later be read
// back to verify a bundle:
//
//	rec := record.FromResult(res, version)
//	w, _ := serializer.NewFileWriterOrStdout(serializer.FormatYAML, "cm://radar/anchor-2025-06-01")
//	_ = w.Serialize(ctx, rec)
package record
