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
	"github.com/themeradar/anchor/pkg/errors"
)

// Proof ties one artifact to a bundle root: the artifact's leaf digest, its
// position, and the full ordered leaf list the root was computed from.
// Verifying a proof rehashes only the one artifact.
type Proof struct {
	Bundle    string   `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	Algorithm string   `json:"algorithm" yaml:"algorithm"`
	Schema    string   `json:"schema" yaml:"schema"`
	Path      string   `json:"path" yaml:"path"`
	Index     int      `json:"index" yaml:"index"`
	Leaf      Digest   `json:"leaf" yaml:"leaf"`
	Leaves    []Digest `json:"leaves" yaml:"leaves"`
	Root      Digest   `json:"root" yaml:"root"`
}

// Prove builds the inclusion proof for path from a computed fingerprint.
func Prove(fp *Fingerprint, path string) (*Proof, error) {
	if fp == nil || len(fp.Leaves) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "fingerprint carries no leaves")
	}

	idx := -1
	leaves := make([]Digest, len(fp.Leaves))
	for i, l := range fp.Leaves {
		leaves[i] = l.Digest
		if l.Path == path {
			idx = i
		}
	}
	if idx < 0 {
		return nil, errors.ForBundle(errors.ErrCodeNotFound, fp.Bundle, path,
			"path is not part of the bundle", nil)
	}

	return &Proof{
		Bundle:    fp.Bundle,
		Algorithm: fp.Algorithm,
		Schema:    fp.Schema,
		Path:      path,
		Index:     idx,
		Leaf:      fp.Leaves[idx].Digest,
		Leaves:    leaves,
		Root:      fp.Root,
	}, nil
}

// Verify recomputes the leaf from content and the root from the leaf list,
// then checks both against the proof and the anchored root. A nil anchored
// root checks against the proof's own root.
func (p *Proof) Verify(content []byte, anchored Digest) error {
	alg, err := lookupSchema(p.Algorithm, p.Schema)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "proof algorithm", err)
	}
	if p.Index < 0 || p.Index >= len(p.Leaves) {
		return errors.ForBundle(errors.ErrCodeInvalidRequest, p.Bundle, p.Path,
			"proof index out of range", nil)
	}

	if !p.Leaf.Equal(p.Leaves[p.Index]) {
		return errors.ForBundle(errors.ErrCodeInvalidRequest, p.Bundle, p.Path,
			"proof leaf disagrees with the leaf list at its index", nil)
	}

	leaf := LeafDigest(alg, p.Path, content)
	if !leaf.Equal(p.Leaves[p.Index]) {
		return errors.ForBundle(errors.ErrCodeMismatch, p.Bundle, p.Path,
			"artifact content does not match its recorded leaf", nil)
	}

	root := RootOf(alg, p.Leaves)
	if !root.Equal(p.Root) {
		return errors.ForBundle(errors.ErrCodeMismatch, p.Bundle, p.Path,
			"leaf list does not reproduce the proof root", nil)
	}
	if anchored != nil && !root.Equal(anchored) {
		return errors.ForBundle(errors.ErrCodeMismatch, p.Bundle, p.Path,
			"proof root does not match the anchored root", nil)
	}
	return nil
}
