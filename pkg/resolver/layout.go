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
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/themeradar/anchor/pkg/canonical"
	"github.com/themeradar/anchor/pkg/identifier"
)

// Placeholder is replaced with the bundle identifier in document templates
// and diagnostic patterns.
const Placeholder = "{id}"

// Default layout values, matching the publish step's directory structure.
const (
	DefaultLogsDir        = "logs"
	DefaultDailyDocument  = "{id}.md"
	DefaultWeeklyDocument = "weekly_{id}.md"
	DefaultDiagnosticsDir = "assets/diagnostic"
)

// DefaultDiagnosticPatterns are the conventional locations keyed by the
// identifier: a per-bundle subdirectory and identifier-prefixed flat files.
var DefaultDiagnosticPatterns = []string{"{id}/**", "{id}_*"}

// Layout describes where a bundle's files live below Root. All directories
// are Root-relative and use forward slashes.
type Layout struct {
	// Root is the bundle root, usually the repository root.
	Root string `json:"root" yaml:"root"`

	// LogsDir holds the primary documents.
	LogsDir string `json:"logsDir,omitempty" yaml:"logsDir,omitempty"`

	// DailyDocument is the primary document name template for daily ids.
	DailyDocument string `json:"dailyDocument,omitempty" yaml:"dailyDocument,omitempty"`

	// WeeklyDocument is the primary document name template for weekly ids.
	WeeklyDocument string `json:"weeklyDocument,omitempty" yaml:"weeklyDocument,omitempty"`

	// DiagnosticsDir is the root of diagnostic artifacts.
	DiagnosticsDir string `json:"diagnosticsDir,omitempty" yaml:"diagnosticsDir,omitempty"`

	// DiagnosticPatterns are doublestar patterns relative to DiagnosticsDir.
	DiagnosticPatterns []string `json:"diagnosticPatterns,omitempty" yaml:"diagnosticPatterns,omitempty"`

	// CaseInsensitive marks the bundle root as living on a case-insensitive
	// filesystem.
	CaseInsensitive bool `json:"caseInsensitive,omitempty" yaml:"caseInsensitive,omitempty"`
}

// DefaultLayout returns the default layout rooted at root.
func DefaultLayout(root string) Layout {
	return Layout{Root: root}.WithDefaults()
}

// WithDefaults returns a copy of l with empty fields set to their defaults.
func (l Layout) WithDefaults() Layout {
	if l.LogsDir == "" {
		l.LogsDir = DefaultLogsDir
	}
	if l.DailyDocument == "" {
		l.DailyDocument = DefaultDailyDocument
	}
	if l.WeeklyDocument == "" {
		l.WeeklyDocument = DefaultWeeklyDocument
	}
	if l.DiagnosticsDir == "" {
		l.DiagnosticsDir = DefaultDiagnosticsDir
	}
	if l.DiagnosticPatterns == nil {
		l.DiagnosticPatterns = append([]string(nil), DefaultDiagnosticPatterns...)
	}
	return l
}

// Validate checks that every configured location stays inside Root.
func (l Layout) Validate() error {
	if strings.TrimSpace(l.Root) == "" {
		return fmt.Errorf("bundle root is required")
	}
	for name, dir := range map[string]string{"logsDir": l.LogsDir, "diagnosticsDir": l.DiagnosticsDir} {
		if _, err := canonical.NormalizePath(dir); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, dir, err)
		}
	}
	for name, tmpl := range map[string]string{"dailyDocument": l.DailyDocument, "weeklyDocument": l.WeeklyDocument} {
		if !strings.Contains(tmpl, Placeholder) {
			return fmt.Errorf("%s %q must contain %s", name, tmpl, Placeholder)
		}
		if _, err := canonical.NormalizePath(tmpl); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, tmpl, err)
		}
	}
	for _, p := range l.DiagnosticPatterns {
		if !strings.Contains(p, Placeholder) {
			return fmt.Errorf("diagnostic pattern %q must contain %s", p, Placeholder)
		}
		if !doublestar.ValidatePattern(expand(p, "0000-00-00")) {
			return fmt.Errorf("invalid diagnostic pattern %q", p)
		}
	}
	return nil
}

// DocumentPath returns the Root-relative path of the primary document for id.
func (l Layout) DocumentPath(id identifier.ID) string {
	tmpl := l.DailyDocument
	if id.Kind() == identifier.KindWeekly {
		tmpl = l.WeeklyDocument
	}
	return path.Join(l.LogsDir, strings.ReplaceAll(tmpl, Placeholder, id.String()))
}

// patterns returns the diagnostic patterns for id, with the identifier quoted.
func (l Layout) patterns(id identifier.ID) []string {
	out := make([]string, 0, len(l.DiagnosticPatterns))
	for _, p := range l.DiagnosticPatterns {
		out = append(out, expand(p, quoteMeta(id.String())))
	}
	return out
}

// inDiagnostics reports whether the Root-relative rel lies below DiagnosticsDir.
func (l Layout) inDiagnostics(rel string) bool {
	dir := path.Clean(l.DiagnosticsDir)
	return strings.HasPrefix(rel, dir+"/")
}

func expand(pattern, id string) string {
	return strings.ReplaceAll(pattern, Placeholder, id)
}

func quoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
