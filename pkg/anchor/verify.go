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

package anchor

import (
	"context"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
)

// Change describes how one file differs from a recorded fingerprint.
type Change string

const (
	ChangeAdded    Change = "added"
	ChangeRemoved  Change = "removed"
	ChangeModified Change = "modified"
)

// Difference is one file that no longer matches its recorded leaf.
type Difference struct {
	Path   string `json:"path" yaml:"path"`
	Change Change `json:"change" yaml:"change"`
}

// Verification is the outcome of recomputing a bundle fingerprint and
// comparing it to a recorded one.
type Verification struct {
	Bundle   string                   `json:"bundle" yaml:"bundle"`
	Match    bool                     `json:"match" yaml:"match"`
	Expected *fingerprint.Fingerprint `json:"expected" yaml:"expected"`
	Actual   *fingerprint.Fingerprint `json:"actual" yaml:"actual"`
	// Differences is only populated when the expected fingerprint carries
	// its leaves.
	Differences []Difference `json:"differences,omitempty" yaml:"differences,omitempty"`
}

// Err returns a FINGERPRINT_MISMATCH error for a failed verification, or nil.
func (v *Verification) Err() error {
	if v.Match {
		return nil
	}
	return errors.ForBundle(errors.ErrCodeMismatch, v.Bundle, "",
		"recomputed "+v.Actual.String()+" does not match recorded "+v.Expected.String(), nil)
}

// Verify recomputes the fingerprint of bundle id with the expected
// fingerprint's algorithm and compares the two. A pipeline failure is
// returned as an error; a differing root is reported through Match.
func (e *Engine) Verify(ctx context.Context, id string, expected *fingerprint.Fingerprint) (*Verification, error) {
	if expected == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "expected fingerprint is required")
	}
	alg, err := expected.Algo()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "expected fingerprint", err)
	}

	res, err := e.run(ctx, id, alg)
	if err != nil {
		verificationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	v := &Verification{
		Bundle:   res.Fingerprint.Bundle,
		Match:    fingerprint.Equal(expected, res.Fingerprint),
		Expected: expected,
		Actual:   res.Fingerprint,
	}
	if len(expected.Leaves) > 0 {
		v.Differences = diff(expected.Leaves, res.Fingerprint.Leaves)
	}

	if v.Match {
		verificationsTotal.WithLabelValues("match").Inc()
		e.logger.Info("bundle verified", "bundle", v.Bundle, "root", res.Fingerprint.String())
	} else {
		verificationsTotal.WithLabelValues("mismatch").Inc()
		e.logger.Warn("bundle fingerprint mismatch",
			"bundle", v.Bundle,
			"expected", expected.String(),
			"actual", res.Fingerprint.String(),
			"differences", len(v.Differences))
	}
	return v, nil
}

// diff compares two leaf lists, both sorted by path.
func diff(want, got []fingerprint.Leaf) []Difference {
	var out []Difference
	i, j := 0, 0
	for i < len(want) || j < len(got) {
		switch {
		case j == len(got) || (i < len(want) && want[i].Path < got[j].Path):
			out = append(out, Difference{Path: want[i].Path, Change: ChangeRemoved})
			i++
		case i == len(want) || got[j].Path < want[i].Path:
			out = append(out, Difference{Path: got[j].Path, Change: ChangeAdded})
			j++
		default:
			if !want[i].Digest.Equal(got[j].Digest) {
				out = append(out, Difference{Path: want[i].Path, Change: ChangeModified})
			}
			i++
			j++
		}
	}
	return out
}
