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

package fingerprint

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/themeradar/anchor/pkg/bundle"
	"github.com/themeradar/anchor/pkg/canonical"
	"github.com/themeradar/anchor/pkg/errors"
)

// LinePrefix starts every fingerprint line, e.g. "BUNDLE_ROOT_SHA256: <hex>".
const LinePrefix = "BUNDLE_ROOT_"

// Digest is a raw digest rendered as lowercase hex in every textual form.
type Digest []byte

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid hex digest: %w", err)
	}
	*d = b
	return nil
}

// Equal reports whether two digests are identical, in constant time.
func (d Digest) Equal(other Digest) bool {
	return len(d) == len(other) && subtle.ConstantTimeCompare(d, other) == 1
}

// Leaf is the path-bound digest of one manifest entry.
type Leaf struct {
	Path   string `json:"path" yaml:"path"`
	Digest Digest `json:"digest" yaml:"digest"`
}

// Fingerprint is the root digest of a bundle plus the identifiers needed to
// tell algorithms and schema versions apart. It is computed once from a
// manifest snapshot and never mutated.
type Fingerprint struct {
	// Bundle is the identifier of the fingerprinted bundle, when known.
	Bundle string `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	// Algorithm is the digest algorithm name.
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	// Schema is the combination rule version.
	Schema string `json:"schema" yaml:"schema"`
	// Root is the root digest.
	Root Digest `json:"root" yaml:"root"`
	// Leaves are the per-entry digests in manifest order. Parsed fingerprints
	// have no leaves.
	Leaves []Leaf `json:"leaves,omitempty" yaml:"leaves,omitempty"`
}

// Option configures hashing.
type Option func(*hashOptions)

type hashOptions struct {
	alg Algorithm
}

// WithAlgorithm selects the digest algorithm. Defaults to SHA256.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *hashOptions) {
		o.alg = alg
	}
}

// Hash computes the root fingerprint of a canonical manifest.
// An empty manifest fails with EMPTY_BUNDLE.
func Hash(m *bundle.Manifest, opts ...Option) (*Fingerprint, error) {
	o := &hashOptions{alg: Default}
	for _, opt := range opts {
		opt(o)
	}

	bundleID := ""
	if m != nil {
		bundleID = m.ID.String()
	}

	if m.Len() == 0 {
		return nil, errors.ForBundle(errors.ErrCodeEmptyBundle, bundleID, "",
			"bundle has no entries; refusing to fingerprint no data", nil)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.ForBundle(errors.ErrCodeInternal, bundleID, "",
			"manifest is not canonical", err)
	}

	leaves := make([]Leaf, 0, m.Len())
	digests := make([]Digest, 0, m.Len())
	for _, e := range m.Entries {
		d := LeafDigest(o.alg, e.Path, e.Content)
		leaves = append(leaves, Leaf{Path: e.Path, Digest: d})
		digests = append(digests, d)
	}

	return &Fingerprint{
		Bundle:    bundleID,
		Algorithm: o.alg.Name,
		Schema:    o.alg.Schema,
		Root:      RootOf(o.alg, digests),
		Leaves:    leaves,
	}, nil
}

// LeafDigest returns H(path || 0x00 || content).
func LeafDigest(alg Algorithm, path string, content []byte) Digest {
	h := alg.New()
	h.Write([]byte(path))
	h.Write([]byte{canonical.Separator})
	h.Write(content)
	return h.Sum(nil)
}

// RootOf returns H(leaf_1 || ... || leaf_n).
func RootOf(alg Algorithm, leaves []Digest) Digest {
	h := alg.New()
	for _, l := range leaves {
		h.Write(l)
	}
	return h.Sum(nil)
}

// Hex returns the root digest as lowercase hex.
func (f *Fingerprint) Hex() string {
	return f.Root.String()
}

// String returns the self-describing form "<algorithm>:<schema>:<hex>".
func (f *Fingerprint) String() string {
	return f.Algorithm + ":" + f.Schema + ":" + f.Hex()
}

// LineKey returns the key of the output line, e.g. "BUNDLE_ROOT_SHA256".
// Schema v1 carries no suffix; later schemas append "_<SCHEMA>".
func (f *Fingerprint) LineKey() string {
	key := LinePrefix + strings.ToUpper(f.Algorithm)
	if f.Schema != SchemaV1 {
		key += "_" + strings.ToUpper(f.Schema)
	}
	return key
}

// Line returns the single output line, e.g. "BUNDLE_ROOT_SHA256: <hex>".
func (f *Fingerprint) Line() string {
	return f.LineKey() + ": " + f.Hex()
}

// Algo returns the registered algorithm of the fingerprint.
func (f *Fingerprint) Algo() (Algorithm, error) {
	return lookupSchema(f.Algorithm, f.Schema)
}

// Equal reports whether a and b carry the same algorithm, schema and root.
func Equal(a, b *Fingerprint) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Algorithm, b.Algorithm) &&
		strings.EqualFold(a.Schema, b.Schema) &&
		a.Root.Equal(b.Root)
}

var (
	textPattern = regexp.MustCompile(`^([a-z0-9]+):(v[0-9]+):([0-9a-fA-F]+)$`)
	linePattern = regexp.MustCompile("(?:^|[^A-Z0-9_])" + LinePrefix +
		"([A-Z0-9]+?)(?:_(V[0-9]+))?:(?:\\*\\*|__)?[ \\t]*`?([0-9a-fA-F]+)`?")
	hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)
)

// Parse reads a fingerprint from any of its textual forms:
//
//	sha256:v1:<hex>
//	BUNDLE_ROOT_SHA256: <hex>
//	<hex>               (bare hex, read as the default algorithm)
//
// The result has no leaves.
func Parse(s string) (*Fingerprint, error) {
	s = strings.TrimSpace(s)

	if m := textPattern.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3])
	}
	if strings.Contains(s, LinePrefix) {
		f, ok, err := FindLine(s)
		if err != nil {
			return nil, err
		}
		if ok {
			return f, nil
		}
	}
	if hexPattern.MatchString(s) {
		return build(Default.Name, Default.Schema, s)
	}
	return nil, fmt.Errorf("unrecognized fingerprint %q", s)
}

// FindLine returns the first fingerprint line embedded in text, tolerating
// markdown emphasis and backticks such as "**BUNDLE_ROOT_SHA256:** `<hex>`".
func FindLine(text string) (*Fingerprint, bool, error) {
	m := linePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}
	schema := SchemaV1
	if m[2] != "" {
		schema = strings.ToLower(m[2])
	}
	f, err := build(strings.ToLower(m[1]), schema, m[3])
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}

func build(name, schema, hexRoot string) (*Fingerprint, error) {
	alg, err := lookupSchema(name, schema)
	if err != nil {
		return nil, err
	}
	root, err := hex.DecodeString(strings.ToLower(hexRoot))
	if err != nil {
		return nil, fmt.Errorf("invalid hex root: %w", err)
	}
	if len(root) != alg.Size {
		return nil, fmt.Errorf("%s root must be %d hex characters, got %d",
			alg.Name, alg.Size*2, len(hexRoot))
	}
	return &Fingerprint{Algorithm: alg.Name, Schema: alg.Schema, Root: root}, nil
}
