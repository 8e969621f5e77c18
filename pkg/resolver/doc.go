// Package resolver locates the files that make up a bundle.
//
// A bundle is the primary document named after its identifier (for example
// logs/2025-06-01.md or logs/weekly_2025-W05.md) plus every diagnostic
// artifact that is either referenced from that document or stored at a
// location keyed by the identifier:
//
//	assets/diagnostic/2025-06-01/**    per-bundle subdirectory
//	assets/diagnostic/2025-06-01_*     identifier-prefixed flat files
//
// References are read from the markdown AST: image destinations always count,
// link destinations only when they point into the diagnostics directory.
// Nothing else in the repository is considered, and discovery never relies
// on modification times.
//
// Usage:
//
//	r, err := resolver.New(resolver.DefaultLayout("/srv/radar"))
//	res, err := r.Resolve(ctx, identifier.MustParse("2025-06-01"))
//	entries, err := r.Snapshot(ctx, res)
package resolver
