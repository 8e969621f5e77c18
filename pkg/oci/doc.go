// Package oci publishes anchored bundles to OCI-compliant registries.
//
// A pushed artifact holds exactly the files that were fingerprinted, taken
// from the in-memory snapshot rather than re-read from disk, plus the
// serialized anchor record. Pushes use the ORAS library and Docker
// credential helpers (~/.docker/config.json).
//
// # Usage
//
//	ref, err := oci.ParseReference("oci://ghcr.io/themeradar/anchors")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Push(ctx, oci.PushOptions{
//	    Manifest:    result.Manifest,
//	    Record:      recordYAML,
//	    Fingerprint: result.Fingerprint.String(),
//	    Reference:   ref,
//	})
//
// When the reference carries no tag the bundle identifier is used.
//
// # Artifact Layout
//
// Manifests are OCI 1.1 with artifact type
// "application/vnd.themeradar.anchor.bundle" and two layers: a reproducible
// tarball of the bundle files under "bundle/" and the record. The bundle
// identifier and fingerprint are set as the io.themeradar.anchor.bundle and
// io.themeradar.anchor.fingerprint manifest annotations.
package oci
