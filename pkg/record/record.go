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

package record

import (
	"fmt"

	"github.com/themeradar/anchor/pkg/anchor"
	"github.com/themeradar/anchor/pkg/bundle"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/header"
	"github.com/themeradar/anchor/pkg/rollup"
)

// File is one fingerprinted file of a bundle.
type File struct {
	Path string             `json:"path" yaml:"path"`
	Size int64              `json:"size" yaml:"size"`
	Leaf fingerprint.Digest `json:"leaf" yaml:"leaf"`
}

// BundleAnchor is the durable record of one bundle fingerprint. It carries
// enough to recompute and compare the root, and the per-file leaves to name
// which files changed when it no longer matches.
type BundleAnchor struct {
	header.Header `json:",inline" yaml:",inline"`

	Bundle      string             `json:"bundle" yaml:"bundle"`
	Cadence     string             `json:"cadence" yaml:"cadence"`
	Fingerprint string             `json:"fingerprint" yaml:"fingerprint"`
	Line        string             `json:"line" yaml:"line"`
	Algorithm   string             `json:"algorithm" yaml:"algorithm"`
	Schema      string             `json:"schema" yaml:"schema"`
	Root        fingerprint.Digest `json:"root" yaml:"root"`
	Files       []File             `json:"files,omitempty" yaml:"files,omitempty"`
	TotalBytes  int64              `json:"totalBytes" yaml:"totalBytes"`
}

// NewBundleAnchor builds the record of fp computed over m.
func NewBundleAnchor(fp *fingerprint.Fingerprint, m *bundle.Manifest, version string) *BundleAnchor {
	r := &BundleAnchor{
		Bundle:      fp.Bundle,
		Fingerprint: fp.String(),
		Line:        fp.Line(),
		Algorithm:   fp.Algorithm,
		Schema:      fp.Schema,
		Root:        fp.Root,
	}
	r.Init(header.KindBundleAnchor, header.APIVersion, version)

	if m != nil {
		r.Cadence = m.ID.Kind().String()
		r.TotalBytes = m.TotalBytes()
		r.Files = make([]File, 0, len(fp.Leaves))
		for i, l := range fp.Leaves {
			r.Files = append(r.Files, File{Path: l.Path, Size: m.Entries[i].Size(), Leaf: l.Digest})
		}
	}
	return r
}

// FromResult builds the record of a successful pipeline result.
func FromResult(res *anchor.Result, version string) *BundleAnchor {
	return NewBundleAnchor(res.Fingerprint, res.Manifest, version)
}

// ToFingerprint returns the recorded fingerprint with its leaves. The text
// form and the structured fields must agree.
func (r *BundleAnchor) ToFingerprint() (*fingerprint.Fingerprint, error) {
	if err := r.Check(header.KindBundleAnchor); err != nil {
		return nil, err
	}

	fp, err := fingerprint.Parse(r.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("record fingerprint: %w", err)
	}
	if r.Root != nil && !fp.Root.Equal(r.Root) {
		return nil, fmt.Errorf("record root %s disagrees with fingerprint %s", r.Root, r.Fingerprint)
	}
	if r.Algorithm != "" && r.Algorithm != fp.Algorithm {
		return nil, fmt.Errorf("record algorithm %s disagrees with fingerprint %s", r.Algorithm, r.Fingerprint)
	}

	fp.Bundle = r.Bundle
	for _, f := range r.Files {
		fp.Leaves = append(fp.Leaves, fingerprint.Leaf{Path: f.Path, Digest: f.Leaf})
	}
	return fp, nil
}

// WeeklyRollup is the durable record of a weekly rollup.
type WeeklyRollup struct {
	header.Header `json:",inline" yaml:",inline"`

	Label   string              `json:"label" yaml:"label"`
	Line    string              `json:"line" yaml:"line"`
	Root    fingerprint.Digest  `json:"root" yaml:"root"`
	Days    []rollup.DayRoot    `json:"days" yaml:"days"`
	Missing []rollup.MissingDay `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// NewWeeklyRollup builds the record of ru.
func NewWeeklyRollup(ru *rollup.Rollup, version string) *WeeklyRollup {
	r := &WeeklyRollup{
		Label:   ru.Label,
		Line:    ru.Line(),
		Root:    ru.Root,
		Days:    ru.Days,
		Missing: ru.Missing,
	}
	r.Init(header.KindWeeklyRollup, header.APIVersion, version)
	return r
}

// VerificationResult is the record of one verification.
type VerificationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Bundle      string              `json:"bundle" yaml:"bundle"`
	Match       bool                `json:"match" yaml:"match"`
	Expected    string              `json:"expected" yaml:"expected"`
	Actual      string              `json:"actual" yaml:"actual"`
	Differences []anchor.Difference `json:"differences,omitempty" yaml:"differences,omitempty"`
}

// NewVerificationResult builds the record of v.
func NewVerificationResult(v *anchor.Verification, version string) *VerificationResult {
	r := &VerificationResult{
		Bundle:      v.Bundle,
		Match:       v.Match,
		Expected:    v.Expected.String(),
		Actual:      v.Actual.String(),
		Differences: v.Differences,
	}
	r.Init(header.KindVerificationResult, header.APIVersion, version)
	return r
}
