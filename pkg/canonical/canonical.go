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

package canonical

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/themeradar/anchor/pkg/bundle"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/identifier"
)

// Separator is the byte placed between a path and its content in leaf hashes.
// It is never permitted inside a canonical path.
const Separator byte = 0x00

// Option configures canonicalization.
type Option func(*options)

type options struct {
	foldCase bool
}

// WithCaseFolding folds every path to its Unicode case-folded form. Enable it
// only when the bundle lives on a case-insensitive filesystem; by default case
// is preserved.
func WithCaseFolding(fold bool) Option {
	return func(o *options) {
		o.foldCase = fold
	}
}

// Canonicalize turns entries into the bundle's canonical manifest: paths are
// root-relative with forward slashes, entries are sorted byte-wise by path,
// and content is copied unchanged. Input order does not affect the result.
func Canonicalize(id identifier.ID, entries []bundle.Entry, opts ...Option) (*bundle.Manifest, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var folder cases.Caser
	if o.foldCase {
		folder = cases.Fold()
	}

	out := make([]bundle.Entry, 0, len(entries))
	seen := make(map[string]string, len(entries))

	for _, e := range entries {
		p, err := NormalizePath(e.Path)
		if err != nil {
			return nil, errors.ForBundle(errors.ErrCodePathEscape, id.String(), e.Path,
				"path escapes bundle root", err)
		}
		if o.foldCase {
			p = folder.String(p)
		}

		if prev, dup := seen[p]; dup {
			return nil, errors.ForBundle(errors.ErrCodeDuplicatePath, id.String(), p,
				fmt.Sprintf("entries %q and %q normalize to the same path", prev, e.Path), nil)
		}
		seen[p] = e.Path

		out = append(out, bundle.Entry{
			Path:    p,
			Content: bytes.Clone(e.Content),
		})
	}

	// Go string comparison is byte-wise, independent of locale collation.
	slices.SortFunc(out, func(a, b bundle.Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	return &bundle.Manifest{ID: id, Entries: out}, nil
}

// NormalizePath converts an OS-specific root-relative path into its canonical
// forward-slash form. It rejects empty paths, absolute paths, paths containing
// the separator byte and paths that climb out of the root.
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.IndexByte(p, Separator) >= 0 {
		return "", fmt.Errorf("path contains NUL byte")
	}
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", fmt.Errorf("absolute path")
	}

	slashed := filepath.ToSlash(p)
	if strings.HasPrefix(slashed, "/") {
		return "", fmt.Errorf("absolute path")
	}

	clean := path.Clean(slashed)
	if clean == "." {
		return "", fmt.Errorf("path names the bundle root itself")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path climbs above the bundle root")
	}
	return clean, nil
}
