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
	"crypto/sha256"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/identifier"
	"github.com/themeradar/anchor/pkg/resolver"
)

// LineKey is the key of the weekly root output line.
const LineKey = "WEEKLY_ROOT_SHA256"

// Period is the span of days a rollup covers.
type Period struct {
	// Label names the period and the rollup document, e.g. "2025-W05".
	Label string
	// Days in chronological order.
	Days []time.Time
}

// Week returns the period of a weekly identifier.
func Week(id identifier.ID) (Period, error) {
	if id.Kind() != identifier.KindWeekly {
		return Period{}, errors.ForBundle(errors.ErrCodeInvalidIdentifier, id.String(), "",
			"rollup requires a weekly identifier", nil)
	}
	return Period{Label: id.String(), Days: id.Days()}, nil
}

// ThisWeek returns the ISO week containing now.
func ThisWeek(now time.Time) Period {
	id := identifier.WeekOf(now)
	return Period{Label: id.String(), Days: id.Days()}
}

// Last7 returns the seven calendar days ending with now, labelled after the
// ISO week of the last day with a "_last7" suffix.
func Last7(now time.Time) Period {
	end := identifier.Day(now).Date()
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = end.AddDate(0, 0, i-6)
	}
	return Period{Label: identifier.WeekOf(end).String() + "_last7", Days: days}
}

// DayRoot is the daily bundle root recorded in one day's document.
type DayRoot struct {
	Day  string             `json:"day" yaml:"day"`
	Root fingerprint.Digest `json:"root" yaml:"root"`
}

// MissingDay is a day without a usable recorded root.
type MissingDay struct {
	Day    string `json:"day" yaml:"day"`
	Reason string `json:"reason" yaml:"reason"`
}

// Rollup combines the recorded daily roots of a period into one weekly root.
type Rollup struct {
	Label   string             `json:"label" yaml:"label"`
	Days    []DayRoot          `json:"days" yaml:"days"`
	Missing []MissingDay       `json:"missing,omitempty" yaml:"missing,omitempty"`
	Root    fingerprint.Digest `json:"root" yaml:"root"`
}

// Line returns "WEEKLY_ROOT_SHA256: <hex>".
func (r *Rollup) Line() string {
	return LineKey + ": " + r.Root.String()
}

// Roller reads daily documents through a resolver layout and writes weekly
// rollup documents next to them.
type Roller struct {
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// New creates a Roller over the layout of r.
func New(r *resolver.Resolver, logger *slog.Logger) *Roller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roller{resolver: r, logger: logger}
}

// Compute reads the recorded root of every day in p. The weekly root is
// SHA-256 over the raw daily root bytes of the available days in
// chronological order. A period without any recorded root fails with
// EMPTY_BUNDLE.
func (r *Roller) Compute(ctx context.Context, p Period) (*Rollup, error) {
	out := &Rollup{Label: p.Label}
	h := sha256.New()

	for _, day := range p.Days {
		if err := ctx.Err(); err != nil {
			return nil, errors.ForBundle(errors.ErrCodeTimeout, p.Label, "", "rollup interrupted", err)
		}

		id := identifier.Day(day)
		root, reason, err := r.dailyRoot(id)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			out.Missing = append(out.Missing, MissingDay{Day: id.String(), Reason: reason})
			r.logger.Debug("day not anchored", "bundle", id.String(), "reason", reason)
			continue
		}
		out.Days = append(out.Days, DayRoot{Day: id.String(), Root: root})
		h.Write(root)
	}

	if len(out.Days) == 0 {
		return nil, errors.ForBundle(errors.ErrCodeEmptyBundle, p.Label, "",
			"no daily roots recorded in the selected period", nil)
	}
	out.Root = h.Sum(nil)

	r.logger.Info("weekly rollup computed",
		"label", p.Label,
		"days", len(out.Days),
		"missing", len(out.Missing),
		"root", out.Root.String())
	return out, nil
}

// dailyRoot returns the SHA-256 root recorded in a day's document, or a
// reason the day does not count.
func (r *Roller) dailyRoot(id identifier.ID) (fingerprint.Digest, string, error) {
	rel := r.resolver.Layout().DocumentPath(id)
	b, err := os.ReadFile(filepath.Join(r.resolver.Root(), filepath.FromSlash(rel)))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, "no daily document", nil
		}
		return nil, "", errors.ForBundle(errors.ErrCodeIOFailure, id.String(), rel, "read daily document", err)
	}

	fp, ok, err := fingerprint.FindLine(string(b))
	switch {
	case err != nil:
		return nil, fmt.Sprintf("malformed root line: %v", err), nil
	case !ok:
		return nil, "no recorded bundle root", nil
	case fp.Algorithm != fingerprint.SHA256.Name || fp.Schema != fingerprint.SHA256.Schema:
		return nil, "recorded root is not " + fingerprint.SHA256.String(), nil
	}
	return fp.Root, "", nil
}

// Path returns the Root-relative path of the rollup document for ru. For a
// calendar week this is the primary document of the weekly bundle.
func (r *Roller) Path(ru *Rollup) string {
	l := r.resolver.Layout()
	return path.Join(l.LogsDir, strings.ReplaceAll(l.WeeklyDocument, resolver.Placeholder, ru.Label))
}

// Write renders ru as markdown into the logs directory and returns the
// Root-relative path written.
func (r *Roller) Write(ru *Rollup) (string, error) {
	rel := r.Path(ru)
	abs := filepath.Join(r.resolver.Root(), filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.ForBundle(errors.ErrCodeIOFailure, ru.Label, rel, "create logs directory", err)
	}
	if err := os.WriteFile(abs, Markdown(ru), 0o644); err != nil { //nolint:gosec // published document
		return "", errors.ForBundle(errors.ErrCodeIOFailure, ru.Label, rel, "write rollup document", err)
	}

	r.logger.Info("weekly rollup written", "label", ru.Label, "path", rel)
	return rel, nil
}

// Markdown renders the rollup document.
func Markdown(ru *Rollup) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Anchor Rollup: %s\n\n", ru.Label)

	b.WriteString("## Daily bundle roots\n")
	for _, d := range ru.Days {
		fmt.Fprintf(&b, "- %s: `%s`\n", d.Day, d.Root)
	}

	if len(ru.Missing) > 0 {
		b.WriteString("\n## Missing / not anchored\n")
		for _, m := range ru.Missing {
			fmt.Fprintf(&b, "- %s (%s)\n", m.Day, m.Reason)
		}
	}

	fmt.Fprintf(&b, "\n## %s\n`%s`\n\n", LineKey, ru.Root)
	b.WriteString("_Weekly root = sha256(concat(daily bundle root bytes)), chronological order over available days._\n")
	return []byte(b.String())
}
