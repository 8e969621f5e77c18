// Package canonical converts a resolved bundle file set into its canonical
// manifest.
//
// Canonicalization is independent of filesystem iteration order, OS path
// separators and file metadata:
//
//   - paths become bundle-root-relative and forward-slash separated
//   - paths escaping the root fail with PATH_ESCAPE
//   - entries are sorted by byte-wise path comparison
//   - two entries normalizing to one path fail with DUPLICATE_PATH
//   - content is hashed byte-exact; no line-ending or whitespace normalization
//
// Any content normalization has to happen when the files are written, because
// a verifier re-reads exactly what is on disk.
package canonical
