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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/themeradar/anchor/pkg/identifier"
)

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name    string
		paths   []string
		wantErr bool
	}{
		{name: "empty", paths: nil},
		{name: "single", paths: []string{"logs/2025-06-01.md"}},
		{name: "sorted", paths: []string{"assets/diagnostic/a.png", "logs/2025-06-01.md"}},
		{name: "uppercase sorts before lowercase", paths: []string{"B.png", "a.png"}},
		{name: "unsorted", paths: []string{"logs/x.md", "assets/y.png"}, wantErr: true},
		{name: "duplicate", paths: []string{"a.png", "a.png"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{ID: identifier.MustParse("2025-06-01")}
			for _, p := range tt.paths {
				m.Entries = append(m.Entries, Entry{Path: p})
			}
			err := m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManifestAccessors(t *testing.T) {
	m := &Manifest{Entries: []Entry{
		{Path: "diagnostics/chart.png", Content: []byte{0x89, 'P', 'N', 'G'}},
		{Path: "log.md", Content: []byte("Hello")},
	}}

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"diagnostics/chart.png", "log.md"}, m.Paths())
	assert.Equal(t, int64(9), m.TotalBytes())

	e, ok := m.Lookup("log.md")
	assert.True(t, ok)
	assert.Equal(t, "Hello", string(e.Content))

	_, ok = m.Lookup("missing.md")
	assert.False(t, ok)

	var nilManifest *Manifest
	assert.Equal(t, 0, nilManifest.Len())
	assert.Empty(t, nilManifest.Paths())
	assert.Error(t, nilManifest.Validate())
}
