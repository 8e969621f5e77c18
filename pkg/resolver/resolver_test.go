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

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/identifier"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func newResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	r, err := New(DefaultLayout(root))
	require.NoError(t, err)
	return r
}

func resolve(t *testing.T, r *Resolver, id string) (*Resolution, error) {
	t.Helper()
	return r.Resolve(context.Background(), identifier.MustParse(id))
}

const dailyDoc = `# Theme Radar Daily Brief

![diagnostic W63](../assets/diagnostic/2025-06-01_W63.png)

See the [long window](../assets/diagnostic/extra/W252.png) and the
[project site](https://example.com/x.png), [notes](notes.md) and [top](#leaders).
`

func TestResolve_Daily(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", dailyDoc)
	writeFile(t, root, "assets/diagnostic/2025-06-01_W63.png", "w63")
	writeFile(t, root, "assets/diagnostic/2025-06-01_W252.png", "w252")
	writeFile(t, root, "assets/diagnostic/extra/W252.png", "linked")
	writeFile(t, root, "assets/diagnostic/2025-06-01/heatmap.png", "heat")
	writeFile(t, root, "assets/diagnostic/2025-06-01/nested/deep.png", "deep")
	writeFile(t, root, "assets/diagnostic/2025-06-02_W63.png", "other day")
	writeFile(t, root, "assets/unrelated.png", "unrelated")
	writeFile(t, root, "logs/notes.md", "not a diagnostic")

	res, err := resolve(t, newResolver(t, root), "2025-06-01")
	require.NoError(t, err)

	assert.Equal(t, "logs/2025-06-01.md", res.Document)
	assert.Equal(t, []Candidate{
		{Path: "logs/2025-06-01.md", Source: SourceDocument},
		{Path: "assets/diagnostic/2025-06-01_W63.png", Source: SourceReference},
		{Path: "assets/diagnostic/extra/W252.png", Source: SourceReference},
		{Path: "assets/diagnostic/2025-06-01/heatmap.png", Source: SourceConvention},
		{Path: "assets/diagnostic/2025-06-01/nested/deep.png", Source: SourceConvention},
		{Path: "assets/diagnostic/2025-06-01_W252.png", Source: SourceConvention},
	}, res.Candidates)

	entries, err := newResolver(t, root).Snapshot(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.Equal(t, dailyDoc, string(entries[0].Content))
	assert.Equal(t, "w63", string(entries[1].Content))
}

func TestResolve_Weekly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/weekly_2025-W05.md", "# Week\n")
	writeFile(t, root, "assets/diagnostic/2025-W05_summary.png", "sum")

	res, err := resolve(t, newResolver(t, root), "2025-W05")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/weekly_2025-W05.md", "assets/diagnostic/2025-W05_summary.png"}, res.Paths())
}

func TestResolve_DocumentOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", "# No diagnostics today\n")

	res, err := resolve(t, newResolver(t, root), "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/2025-06-01.md"}, res.Paths())
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		code  errors.ErrorCode
		path  string
	}{
		{
			name:  "missing document",
			setup: func(t *testing.T, root string) { writeFile(t, root, "assets/diagnostic/2025-06-01_W63.png", "x") },
			code:  errors.ErrCodeBundleNotFound,
			path:  "logs/2025-06-01.md",
		},
		{
			name: "document is a directory",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.MkdirAll(filepath.Join(root, "logs", "2025-06-01.md"), 0o755))
			},
			code: errors.ErrCodeBundleNotFound,
			path: "logs/2025-06-01.md",
		},
		{
			name: "missing referenced artifact",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "logs/2025-06-01.md", "![w](../assets/diagnostic/2025-06-01_W63.png)\n")
			},
			code: errors.ErrCodeIncompleteBundle,
			path: "assets/diagnostic/2025-06-01_W63.png",
		},
		{
			name: "reference is a directory",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "logs/2025-06-01.md", "![w](../assets/diagnostic/dir)\n")
				require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "diagnostic", "dir"), 0o755))
			},
			code: errors.ErrCodeIncompleteBundle,
			path: "assets/diagnostic/dir",
		},
		{
			name: "reference climbs out of root",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "logs/2025-06-01.md", "![w](../../../etc/passwd)\n")
			},
			code: errors.ErrCodePathEscape,
			path: "../../../etc/passwd",
		},
		{
			name: "symlink escapes root",
			setup: func(t *testing.T, root string) {
				outside := filepath.Join(t.TempDir(), "secret.png")
				require.NoError(t, os.WriteFile(outside, []byte("s"), 0o600))
				writeFile(t, root, "logs/2025-06-01.md", "# doc\n")
				require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "diagnostic"), 0o755))
				require.NoError(t, os.Symlink(outside, filepath.Join(root, "assets", "diagnostic", "2025-06-01_W63.png")))
			},
			code: errors.ErrCodePathEscape,
			path: "assets/diagnostic/2025-06-01_W63.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)

			_, err := resolve(t, newResolver(t, root), "2025-06-01")
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))

			var se *errors.StructuredError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "2025-06-01", se.Bundle())
			assert.Equal(t, tt.path, se.Path())
		})
	}
}

func TestResolve_SymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", "# doc\n")
	writeFile(t, root, "shared/chart.png", "chart")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "diagnostic"), 0o755))
	require.NoError(t, os.Symlink(
		filepath.Join(root, "shared", "chart.png"),
		filepath.Join(root, "assets", "diagnostic", "2025-06-01_chart.png"),
	))

	r := newResolver(t, root)
	res, err := resolve(t, r, "2025-06-01")
	require.NoError(t, err)
	assert.Contains(t, res.Paths(), "assets/diagnostic/2025-06-01_chart.png")

	entries, err := r.Snapshot(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "chart", string(entries[1].Content))
}

func TestResolve_ReferenceAndConventionDeduplicated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", "![w](../assets/diagnostic/2025-06-01_W63.png)\n")
	writeFile(t, root, "assets/diagnostic/2025-06-01_W63.png", "w63")

	res, err := resolve(t, newResolver(t, root), "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Path: "logs/2025-06-01.md", Source: SourceDocument},
		{Path: "assets/diagnostic/2025-06-01_W63.png", Source: SourceReference},
	}, res.Candidates)
}

// requireCaseSensitive skips when dir cannot hold two names differing only in case.
func requireCaseSensitive(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case-check"), nil, 0o600))
	defer os.Remove(filepath.Join(dir, "case-check"))
	if _, err := os.Stat(filepath.Join(dir, "CASE-CHECK")); err == nil {
		t.Skip("filesystem is case-insensitive")
	}
}

func newFoldingResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	l := DefaultLayout(root)
	l.CaseInsensitive = true
	r, err := New(l)
	require.NoError(t, err)
	return r
}

func TestResolve_CaseInsensitiveCollision(t *testing.T) {
	root := t.TempDir()
	requireCaseSensitive(t, root)
	writeFile(t, root, "logs/2025-06-01.md", "# doc\n")
	writeFile(t, root, "assets/diagnostic/2025-06-01_chart.png", "lower")
	writeFile(t, root, "assets/diagnostic/2025-06-01_CHART.png", "upper")

	_, err := resolve(t, newFoldingResolver(t, root), "2025-06-01")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDuplicatePath, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "2025-06-01_chart.png")
	assert.Contains(t, err.Error(), "2025-06-01_CHART.png")

	res, err := resolve(t, newResolver(t, root), "2025-06-01")
	require.NoError(t, err, "case-sensitive layouts keep both files")
	assert.Len(t, res.Candidates, 3)
}

func TestResolve_CaseInsensitiveSameFileMerged(t *testing.T) {
	root := t.TempDir()
	requireCaseSensitive(t, root)
	writeFile(t, root, "logs/2025-06-01.md", "![w](../assets/diagnostic/2025-06-01_CHART.png)\n")
	writeFile(t, root, "assets/diagnostic/2025-06-01_chart.png", "chart")
	require.NoError(t, os.Link(
		filepath.Join(root, "assets", "diagnostic", "2025-06-01_chart.png"),
		filepath.Join(root, "assets", "diagnostic", "2025-06-01_CHART.png"),
	))

	res, err := resolve(t, newFoldingResolver(t, root), "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Path: "logs/2025-06-01.md", Source: SourceDocument},
		{Path: "assets/diagnostic/2025-06-01_CHART.png", Source: SourceReference},
	}, res.Candidates)
}

func TestResolver_Check(t *testing.T) {
	root := t.TempDir()
	r := newResolver(t, root)
	require.NoError(t, r.Check(context.Background()))

	require.NoError(t, os.RemoveAll(root))
	err := r.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeIOFailure, errors.CodeOf(err))
}

func TestResolve_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", "# doc\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newResolver(t, root).Resolve(ctx, identifier.MustParse("2025-06-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_FileRemovedAfterResolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", "# doc\n")
	writeFile(t, root, "assets/diagnostic/2025-06-01_W63.png", "w63")

	r := newResolver(t, root)
	res, err := resolve(t, r, "2025-06-01")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "assets", "diagnostic", "2025-06-01_W63.png")))

	_, err = r.Snapshot(context.Background(), res)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIncompleteBundle))
}

func TestNew_InvalidLayout(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name   string
		layout Layout
	}{
		{name: "no root", layout: Layout{}},
		{name: "missing root", layout: Layout{Root: filepath.Join(root, "nope")}},
		{name: "escaping logs dir", layout: Layout{Root: root, LogsDir: "../logs"}},
		{name: "template without id", layout: Layout{Root: root, DailyDocument: "today.md"}},
		{name: "pattern without id", layout: Layout{Root: root, DiagnosticPatterns: []string{"*.png"}}},
		{name: "bad pattern", layout: Layout{Root: root, DiagnosticPatterns: []string{"{id}_[*"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.layout)
			assert.Error(t, err)
		})
	}
}

func TestLocalDestination(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "../assets/diagnostic/a.png", want: "../assets/diagnostic/a.png", ok: true},
		{in: "a%20b.png", want: "a b.png", ok: true},
		{in: "chart.png?raw=1#top", want: "chart.png", ok: true},
		{in: "https://example.com/a.png", ok: false},
		{in: "mailto:someone@example.com", ok: false},
		{in: "//cdn.example.com/a.png", ok: false},
		{in: "#section", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := localDestination(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
