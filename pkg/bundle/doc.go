// Package bundle defines the data model shared by the resolver, the
// canonicalizer and the root hasher: bundle entries and the canonical
// manifest that orders them.
package bundle
