// Package identifier validates bundle identifiers.
//
// A bundle is identified by a calendar date (YYYY-MM-DD, daily bundles) or an
// ISO week label (YYYY-Www, weekly bundles). Identifiers are supplied by the
// caller and never invented; malformed labels fail fast with
// INVALID_IDENTIFIER instead of resolving to an empty bundle.
//
//	id, err := identifier.Parse("2026-W05")
//	for _, day := range id.Days() {
//	    fmt.Println(day.Format(identifier.DateLayout))
//	}
package identifier
