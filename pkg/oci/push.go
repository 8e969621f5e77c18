// Copyright (c) 2025, The Theme Radar Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/themeradar/anchor/pkg/bundle"
	"github.com/themeradar/anchor/pkg/errors"
)

// Media and artifact types of pushed bundles.
const (
	ArtifactType    = "application/vnd.themeradar.anchor.bundle"
	RecordMediaType = "application/vnd.themeradar.anchor.record.v1+yaml"
)

// Manifest annotations.
const (
	AnnotationBundle      = "io.themeradar.anchor.bundle"
	AnnotationFingerprint = "io.themeradar.anchor.fingerprint"
)

const (
	bundleLayerName = "bundle"
	recordFileName  = "anchor.yaml"
)

// PushOptions configures a bundle push.
type PushOptions struct {
	// Manifest is the canonical snapshot that was fingerprinted. Its content,
	// not the files on disk, is what gets pushed.
	Manifest *bundle.Manifest
	// Record is the serialized anchor record, stored as its own layer.
	Record []byte
	// Fingerprint is the text form of the bundle fingerprint.
	Fingerprint string
	// Reference is the destination. A missing tag defaults to the bundle id.
	Reference *Reference
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Created, when set, pins the manifest creation annotation for
	// reproducible pushes.
	Created string
	// Target overrides the remote repository, e.g. with a local OCI layout.
	Target oras.Target
}

// PushResult describes a pushed artifact.
type PushResult struct {
	// Digest is the manifest digest.
	Digest string `json:"digest" yaml:"digest"`
	// Reference is the full image reference that was pushed.
	Reference string `json:"reference" yaml:"reference"`
}

// Push packs the bundle snapshot and its record into an OCI 1.1 artifact
// and copies it to the registry using Docker credentials.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Manifest.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "nothing to push: manifest is empty")
	}
	if opts.Reference == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	bid := opts.Manifest.ID.String()
	ref := opts.Reference
	if ref.Tag == "" {
		ref = ref.WithTag(TagFor(bid))
	}

	dir, err := os.MkdirTemp("", "anchor-push-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, "create staging directory", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := stage(dir, opts.Manifest, opts.Record); err != nil {
		return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, "", "stage bundle for push", err)
	}

	fs, err := file.New(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layers := make([]ociv1.Descriptor, 0, 2)
	bundleDesc, err := fs.Add(ctx, bundleLayerName, ociv1.MediaTypeImageLayerGzip, filepath.Join(dir, bundleLayerName))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "add bundle layer", err)
	}
	layers = append(layers, bundleDesc)

	if len(opts.Record) > 0 {
		recordDesc, err := fs.Add(ctx, recordFileName, RecordMediaType, filepath.Join(dir, recordFileName))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "add record layer", err)
		}
		layers = append(layers, recordDesc)
	}

	annotations := map[string]string{
		AnnotationBundle:      bid,
		ociv1.AnnotationTitle: "anchor bundle " + bid,
	}
	if opts.Fingerprint != "" {
		annotations[AnnotationFingerprint] = opts.Fingerprint
	}
	if opts.Created != "" {
		annotations[ociv1.AnnotationCreated] = opts.Created
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "pack manifest", err)
	}
	if err := fs.Tag(ctx, manifestDesc, ref.Tag); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "tag manifest in local store", err)
	}

	target := opts.Target
	if target == nil {
		repo, err := remote.NewRepository(ref.Repo())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "initialize remote repository", err)
		}
		repo.PlainHTTP = opts.PlainHTTP
		repo.Client = authClient(opts.PlainHTTP, opts.InsecureTLS)
		target = repo
	}

	desc, err := oras.Copy(ctx, fs, ref.Tag, target, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, "", "push artifact to "+ref.ImageReference(), err)
	}

	slog.Info("bundle pushed", "bundle", bid, "reference", ref.ImageReference(), "digest", desc.Digest.String())
	return &PushResult{Digest: desc.Digest.String(), Reference: ref.ImageReference()}, nil
}

// stage writes the manifest entries below dir/bundle and the record to
// dir/anchor.yaml.
func stage(dir string, m *bundle.Manifest, record []byte) error {
	base := filepath.Join(dir, bundleLayerName)
	for _, e := range m.Entries {
		p := filepath.Join(base, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", e.Path, err)
		}
		if err := os.WriteFile(p, e.Content, 0o644); err != nil { //nolint:gosec // published content
			return fmt.Errorf("write %s: %w", e.Path, err)
		}
	}
	if len(record) > 0 {
		if err := os.WriteFile(filepath.Join(dir, recordFileName), record, 0o644); err != nil { //nolint:gosec // published content
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}

// authClient creates a registry client with Docker credential support.
func authClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credential store unavailable, pushing anonymously", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}

	c := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		c.Credential = credentials.Credential(credStore)
	}
	return c
}
