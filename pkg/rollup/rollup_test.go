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

package rollup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/identifier"
	"github.com/themeradar/anchor/pkg/resolver"
)

func writeDoc(t *testing.T, root, day, body string) {
	t.Helper()
	p := filepath.Join(root, "logs", day+".md")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func newRoller(t *testing.T, root string) *Roller {
	t.Helper()
	r, err := resolver.New(resolver.DefaultLayout(root))
	require.NoError(t, err)
	return New(r, nil)
}

func TestCompute(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "2025-01-27", "# Mon\n\n**BUNDLE_ROOT_SHA256:** `"+strings.Repeat("11", 32)+"`\n")
	writeDoc(t, root, "2025-01-28", "# Tue, not anchored\n")
	writeDoc(t, root, "2025-01-29", "BUNDLE_ROOT_SHA256: "+strings.Repeat("22", 32)+"\n")
	writeDoc(t, root, "2025-01-30", "BUNDLE_ROOT_BLAKE3: "+strings.Repeat("33", 32)+"\n")

	p, err := Week(identifier.MustParse("2025-W05"))
	require.NoError(t, err)
	require.Len(t, p.Days, 7)

	r := newRoller(t, root)
	ru, err := r.Compute(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "2025-W05", ru.Label)
	require.Len(t, ru.Days, 2)
	assert.Equal(t, "2025-01-27", ru.Days[0].Day)
	assert.Equal(t, "2025-01-29", ru.Days[1].Day)
	assert.Len(t, ru.Missing, 5)
	assert.Equal(t, "2025-01-28", ru.Missing[0].Day)
	assert.Equal(t, "WEEKLY_ROOT_SHA256: 5189c77d29fe5d546a045ec46986852785fea5c13ac7da9c115ff5fb6edf817c", ru.Line())

	rel, err := r.Write(ru)
	require.NoError(t, err)
	assert.Equal(t, "logs/weekly_2025-W05.md", rel)

	b, err := os.ReadFile(filepath.Join(root, "logs", "weekly_2025-W05.md"))
	require.NoError(t, err)
	doc := string(b)
	assert.Contains(t, doc, "- 2025-01-27: `"+strings.Repeat("11", 32)+"`")
	assert.Contains(t, doc, "## Missing / not anchored")
	assert.Contains(t, doc, "`5189c77d29fe5d546a045ec46986852785fea5c13ac7da9c115ff5fb6edf817c`")
}

func TestCompute_Empty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs"), 0o755))

	_, err := newRoller(t, root).Compute(context.Background(), ThisWeek(time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyBundle))
	assert.Contains(t, err.Error(), "2025-W23")
}

func TestPeriods(t *testing.T) {
	now := time.Date(2025, 2, 5, 18, 30, 0, 0, time.UTC)

	this := ThisWeek(now)
	assert.Equal(t, "2025-W06", this.Label)
	assert.Equal(t, "2025-02-03", this.Days[0].Format(identifier.DateLayout))
	assert.Equal(t, "2025-02-09", this.Days[6].Format(identifier.DateLayout))

	last := Last7(now)
	assert.Equal(t, "2025-W06_last7", last.Label)
	require.Len(t, last.Days, 7)
	assert.Equal(t, "2025-01-30", last.Days[0].Format(identifier.DateLayout))
	assert.Equal(t, "2025-02-05", last.Days[6].Format(identifier.DateLayout))

	_, err := Week(identifier.MustParse("2025-02-05"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidIdentifier))
}
