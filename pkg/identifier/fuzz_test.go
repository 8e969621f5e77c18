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
)

// FuzzParse performs fuzz testing on Parse to find edge cases
func FuzzParse(f *testing.F) {
	// Seed corpus with valid and edge case inputs
	f.Add("2025-06-01")
	f.Add("2024-02-29")
	f.Add("2026-W05")
	f.Add("2026-W53")
	f.Add("2025-W53")
	f.Add("0000-01-01")
	f.Add("9999-12-31")
	f.Add("")
	f.Add("-")
	f.Add("2025-6-1")
	f.Add("2025-06-01T00:00:00Z")
	f.Add("../logs")
	f.Add("2026-W")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := Parse(input)
		if err != nil {
			if !id.IsZero() {
				t.Errorf("Parse(%q) returned non-zero id with error", input)
			}
			return
		}

		// A valid identifier always round-trips to the exact input.
		if id.String() != input {
			t.Errorf("Parse(%q).String() = %q", input, id.String())
		}

		// Valid identifiers never contain path separators.
		for _, r := range input {
			if r == '/' || r == '\\' || r == '.' {
				t.Errorf("Parse(%q) accepted a path character %q", input, r)
			}
		}

		days := id.Days()
		switch id.Kind() {
		case KindDaily:
			if len(days) != 1 {
				t.Errorf("daily id %q covers %d days", input, len(days))
			}
		case KindWeekly:
			if len(days) != 7 {
				t.Errorf("weekly id %q covers %d days", input, len(days))
			}
		default:
			t.Errorf("Parse(%q) returned unknown kind %q", input, id.Kind())
		}
	})
}
