// Package fingerprint computes bundle root digests.
//
// Each manifest entry contributes a leaf digest H(path || 0x00 || content);
// the root is H(leaf_1 || ... || leaf_n) over the leaves in manifest order.
// Binding the path into each leaf means renaming a file changes the root even
// when its bytes do not, and the separator keeps path and content from
// sliding into each other.
//
// A fingerprint renders in three forms:
//
//	sha256:v1:<hex>              self-describing text form
//	BUNDLE_ROOT_SHA256: <hex>    the single stdout line
//	<hex>                        bare root
//
// SHA-256 is the default; BLAKE3 is registered as an alternative and is
// always named in the textual forms so the two never compare equal.
package fingerprint
