// Package rollup combines the recorded daily bundle roots of a week into one
// weekly root.
//
// Each daily document carries its root on a line such as
//
//	**BUNDLE_ROOT_SHA256:** `<hex>`
//
// The weekly root is SHA-256 over the raw bytes of the available daily roots
// in chronological order. Days without a document or without a recorded root
// are listed as missing and left out of the combination. The rollup is
// written to the logs directory as the weekly document, so the weekly bundle
// can itself be fingerprinted.
package rollup
