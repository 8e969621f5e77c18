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
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/themeradar/anchor/pkg/errors"
)

// Kind is the publication cadence a bundle identifier denotes.
type Kind string

const (
	// KindDaily identifies a calendar-day bundle labelled YYYY-MM-DD.
	KindDaily Kind = "daily"
	// KindWeekly identifies an ISO-week bundle labelled YYYY-Www.
	KindWeekly Kind = "weekly"
	// KindAny accepts either label format.
	KindAny Kind = ""
)

// DateLayout is the layout of daily identifiers.
const DateLayout = "2006-01-02"

var (
	dailyPattern  = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	weeklyPattern = regexp.MustCompile(`^([0-9]{4})-W([0-9]{2})$`)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	return string(k)
}

// ParseKindName converts a configuration value into a Kind.
func ParseKindName(s string) (Kind, error) {
	switch s {
	case "", "any":
		return KindAny, nil
	case string(KindDaily):
		return KindDaily, nil
	case string(KindWeekly):
		return KindWeekly, nil
	default:
		return KindAny, fmt.Errorf("unknown identifier kind %q (must be daily, weekly or any)", s)
	}
}

// ID is a validated, immutable bundle identifier.
type ID struct {
	label string
	kind  Kind
	// date is the day for daily ids and the Monday of the week for weekly ids.
	date time.Time
	year int
	week int
}

// String returns the identifier label exactly as supplied.
func (id ID) String() string {
	return id.label
}

// Kind returns the cadence of the identifier.
func (id ID) Kind() Kind {
	return id.kind
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.label == ""
}

// Date returns the day of a daily id, or the Monday of a weekly id.
func (id ID) Date() time.Time {
	return id.date
}

// ISOWeek returns the ISO year and week the identifier falls in.
func (id ID) ISOWeek() (year, week int) {
	if id.kind == KindWeekly {
		return id.year, id.week
	}
	return id.date.ISOWeek()
}

// Days returns the calendar days covered by the identifier in chronological
// order: one day for daily ids, Monday through Sunday for weekly ids.
func (id ID) Days() []time.Time {
	if id.kind == KindDaily {
		return []time.Time{id.date}
	}
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = id.date.AddDate(0, 0, i)
	}
	return days
}

// Parse validates s as either a daily or a weekly identifier.
func Parse(s string) (ID, error) {
	return ParseKind(s, KindAny)
}

// ParseKind validates s against the label format of kind. Malformed labels
// fail with INVALID_IDENTIFIER; nothing is trimmed or guessed.
func ParseKind(s string, kind Kind) (ID, error) {
	if kind != KindWeekly && dailyPattern.MatchString(s) {
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return ID{}, invalid(s, "not a calendar date", err)
		}
		return ID{label: s, kind: KindDaily, date: d}, nil
	}

	if kind != KindDaily {
		if m := weeklyPattern.FindStringSubmatch(s); m != nil {
			year, _ := strconv.Atoi(m[1])
			week, _ := strconv.Atoi(m[2])
			if week < 1 || week > WeeksInYear(year) {
				return ID{}, invalid(s, fmt.Sprintf("ISO year %d has no week %d", year, week), nil)
			}
			return ID{label: s, kind: KindWeekly, date: mondayOf(year, week), year: year, week: week}, nil
		}
	}

	switch kind {
	case KindDaily:
		return ID{}, invalid(s, "expected a daily label YYYY-MM-DD", nil)
	case KindWeekly:
		return ID{}, invalid(s, "expected a weekly label YYYY-Www", nil)
	default:
		return ID{}, invalid(s, "expected YYYY-MM-DD or YYYY-Www", nil)
	}
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Day returns the daily identifier for t's calendar date.
func Day(t time.Time) ID {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return ID{label: d.Format(DateLayout), kind: KindDaily, date: d}
}

// Week returns the weekly identifier for the given ISO year and week.
func Week(year, week int) (ID, error) {
	return ParseKind(WeekLabel(year, week), KindWeekly)
}

// WeekOf returns the weekly identifier of the ISO week containing t.
func WeekOf(t time.Time) ID {
	year, week := t.ISOWeek()
	return ID{label: WeekLabel(year, week), kind: KindWeekly, date: mondayOf(year, week), year: year, week: week}
}

// WeekLabel formats an ISO year and week as YYYY-Www.
func WeekLabel(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeeksInYear returns 52 or 53, the number of ISO weeks in year.
func WeeksInYear(year int) int {
	// December 28th is always in the last ISO week of its year.
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// mondayOf returns the Monday starting ISO week `week` of `year`.
func mondayOf(year, week int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday()+6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

func invalid(s, reason string, cause error) error {
	return errors.ForBundle(errors.ErrCodeInvalidIdentifier, strconv.Quote(s), "",
		"invalid bundle identifier: "+reason, cause)
}
