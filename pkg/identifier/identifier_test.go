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

package identifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themeradar/anchor/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		wantKind Kind
		wantErr  bool
	}{
		{name: "daily", input: "2025-06-01", wantKind: KindDaily},
		{name: "leap day", input: "2024-02-29", wantKind: KindDaily},
		{name: "weekly", input: "2026-W05", wantKind: KindWeekly},
		{name: "week 53 in long year", input: "2026-W53", wantKind: KindWeekly},
		{name: "week 53 in short year", input: "2025-W53", wantErr: true},
		{name: "week zero", input: "2026-W00", wantErr: true},
		{name: "not a leap day", input: "2025-02-29", wantErr: true},
		{name: "bad month", input: "2025-13-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "surrounding space", input: " 2025-06-01", wantErr: true},
		{name: "trailing newline", input: "2025-06-01\n", wantErr: true},
		{name: "lowercase week marker", input: "2026-w05", wantErr: true},
		{name: "single digit week", input: "2026-W5", wantErr: true},
		{name: "path traversal", input: "../2025-06-01", wantErr: true},
		{name: "daily restricted to weekly", input: "2025-06-01", kind: KindWeekly, wantErr: true},
		{name: "weekly restricted to daily", input: "2026-W05", kind: KindDaily, wantErr: true},
		{name: "daily restricted to daily", input: "2025-06-01", kind: KindDaily, wantKind: KindDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseKind(tt.input, tt.kind)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidIdentifier), "got %v", err)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, id.Kind())
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestDays(t *testing.T) {
	t.Run("daily covers one day", func(t *testing.T) {
		days := MustParse("2025-06-01").Days()
		require.Len(t, days, 1)
		assert.Equal(t, "2025-06-01", days[0].Format(DateLayout))
	})

	t.Run("weekly covers monday to sunday", func(t *testing.T) {
		days := MustParse("2026-W05").Days()
		require.Len(t, days, 7)
		assert.Equal(t, "2026-01-26", days[0].Format(DateLayout))
		assert.Equal(t, "2026-02-01", days[6].Format(DateLayout))
		assert.Equal(t, time.Monday, days[0].Weekday())
	})

	t.Run("week one may start in previous year", func(t *testing.T) {
		days := MustParse("2026-W01").Days()
		assert.Equal(t, "2025-12-29", days[0].Format(DateLayout))
	})
}

func TestWeekOf(t *testing.T) {
	id := WeekOf(time.Date(2026, time.January, 28, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-W05", id.String())
	assert.Equal(t, KindWeekly, id.Kind())

	year, week := id.ISOWeek()
	assert.Equal(t, 2026, year)
	assert.Equal(t, 5, week)

	// ISO year differs from calendar year at the boundary.
	assert.Equal(t, "2026-W01", WeekOf(time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC)).String())
}

func TestWeek(t *testing.T) {
	id, err := Week(2026, 5)
	require.NoError(t, err)
	assert.Equal(t, "2026-W05", id.String())

	_, err = Week(2025, 53)
	assert.Error(t, err)
}

func TestDay(t *testing.T) {
	id := Day(time.Date(2025, time.June, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2025-06-01", id.String())
	assert.Equal(t, KindDaily, id.Kind())
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 52, WeeksInYear(2025))
	assert.Equal(t, 53, WeeksInYear(2026))
	assert.Equal(t, 53, WeeksInYear(2020))
}

func TestParseKindName(t *testing.T) {
	for in, want := range map[string]Kind{"": KindAny, "any": KindAny, "daily": KindDaily, "weekly": KindWeekly} {
		got, err := ParseKindName(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKindName("monthly")
	assert.Error(t, err)
}
