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

package bundle

import (
	"fmt"
	"strings"

	"github.com/themeradar/anchor/pkg/identifier"
)

// Entry is one file of a bundle: its bundle-root-relative path and the exact
// bytes read from disk. Entries are snapshots; later file changes do not
// affect them.
type Entry struct {
	// Path is relative to the bundle root. Canonical entries use forward slashes.
	Path string `json:"path" yaml:"path"`

	// Content is the byte-exact file content at read time.
	Content []byte `json:"-" yaml:"-"`
}

// Size returns the content length in bytes.
func (e Entry) Size() int64 {
	return int64(len(e.Content))
}

// Manifest is the canonical, ordered entry sequence of one bundle.
// Entries are sorted by byte-wise path comparison and paths are unique.
type Manifest struct {
	// ID is the bundle the entries belong to.
	ID identifier.ID `json:"-" yaml:"-"`

	// Entries in canonical order.
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Paths returns the entry paths in manifest order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, m.Len())
	if m == nil {
		return paths
	}
	for _, e := range m.Entries {
		paths = append(paths, e.Path)
	}
	return paths
}

// TotalBytes returns the summed content size of all entries.
func (m *Manifest) TotalBytes() int64 {
	var n int64
	if m == nil {
		return n
	}
	for _, e := range m.Entries {
		n += e.Size()
	}
	return n
}

// Lookup returns the entry with the given canonical path.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	for _, e := range m.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks the manifest ordering invariant: paths strictly ascending
// in byte-wise order, which also rules out duplicates.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	for i := 1; i < len(m.Entries); i++ {
		if strings.Compare(m.Entries[i-1].Path, m.Entries[i].Path) >= 0 {
			return fmt.Errorf("manifest entries out of canonical order at %q, %q",
				m.Entries[i-1].Path, m.Entries[i].Path)
		}
	}
	return nil
}
