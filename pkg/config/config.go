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

package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/themeradar/anchor/pkg/anchor"
	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/identifier"
	"github.com/themeradar/anchor/pkg/resolver"
	"github.com/themeradar/anchor/pkg/serializer"
)

// Environment variables read by ApplyEnv. The CLI binds the same names to
// its flags.
const (
	EnvConfig          = "ANCHOR_CONFIG"
	EnvRoot            = "ANCHOR_ROOT"
	EnvAlgorithm       = "ANCHOR_ALGORITHM"
	EnvIdentifierKind  = "ANCHOR_IDENTIFIER_KIND"
	EnvCaseInsensitive = "ANCHOR_CASE_INSENSITIVE"
	EnvConcurrency     = "ANCHOR_CONCURRENCY"
)

// Config is the complete anchor configuration: where bundles live, how they
// are laid out and how they are hashed.
type Config struct {
	// Root is the bundle root. Relative roots are resolved against the
	// working directory once, when the resolver is built.
	Root string `json:"root" yaml:"root"`

	Layout Layout `json:"layout" yaml:"layout"`

	Identifier Identifier `json:"identifier" yaml:"identifier"`

	// Algorithm is the hash algorithm name (sha256, blake3).
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// Concurrency bounds the number of bundles fingerprinted in parallel.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// Layout mirrors resolver.Layout without the root.
type Layout struct {
	LogsDir            string   `json:"logsDir,omitempty" yaml:"logsDir,omitempty"`
	DailyDocument      string   `json:"dailyDocument,omitempty" yaml:"dailyDocument,omitempty"`
	WeeklyDocument     string   `json:"weeklyDocument,omitempty" yaml:"weeklyDocument,omitempty"`
	DiagnosticsDir     string   `json:"diagnosticsDir,omitempty" yaml:"diagnosticsDir,omitempty"`
	DiagnosticPatterns []string `json:"diagnosticPatterns,omitempty" yaml:"diagnosticPatterns,omitempty"`
	CaseInsensitive    bool     `json:"caseInsensitive,omitempty" yaml:"caseInsensitive,omitempty"`
}

// Identifier restricts accepted bundle identifiers.
type Identifier struct {
	// Kind is daily, weekly, or empty for both.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Root:        ".",
		Algorithm:   fingerprint.Default.Name,
		Concurrency: defaults.BatchConcurrency,
	}
}

// Load returns Default overlaid with the YAML or JSON document at source.
// source may be a file path, an http(s) URL or a ConfigMap URI. An empty
// source returns Default unchanged.
func Load(ctx context.Context, source string, opts ...serializer.LoadOption) (*Config, error) {
	cfg := Default()
	if source == "" {
		return cfg, nil
	}

	file, err := serializer.Load[Config](ctx, source, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("load config %q", source), err)
	}
	cfg.merge(file)

	slog.Debug("config loaded", "source", source, "root", cfg.Root)
	return cfg, nil
}

// merge overlays the non-zero fields of o.
func (c *Config) merge(o *Config) {
	if o.Root != "" {
		c.Root = o.Root
	}
	if o.Algorithm != "" {
		c.Algorithm = o.Algorithm
	}
	if o.Concurrency > 0 {
		c.Concurrency = o.Concurrency
	}
	if o.Identifier.Kind != "" {
		c.Identifier.Kind = o.Identifier.Kind
	}

	l := o.Layout
	if l.LogsDir != "" {
		c.Layout.LogsDir = l.LogsDir
	}
	if l.DailyDocument != "" {
		c.Layout.DailyDocument = l.DailyDocument
	}
	if l.WeeklyDocument != "" {
		c.Layout.WeeklyDocument = l.WeeklyDocument
	}
	if l.DiagnosticsDir != "" {
		c.Layout.DiagnosticsDir = l.DiagnosticsDir
	}
	if len(l.DiagnosticPatterns) > 0 {
		c.Layout.DiagnosticPatterns = l.DiagnosticPatterns
	}
	if l.CaseInsensitive {
		c.Layout.CaseInsensitive = true
	}
}

// ApplyEnv overlays ANCHOR_* environment variables using lookup, which is
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRoot); ok && v != "" {
		c.Root = v
	}
	if v, ok := lookup(EnvAlgorithm); ok && v != "" {
		c.Algorithm = v
	}
	if v, ok := lookup(EnvIdentifierKind); ok && v != "" {
		c.Identifier.Kind = v
	}
	if v, ok := lookup(EnvCaseInsensitive); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid %s", EnvCaseInsensitive), err)
		}
		c.Layout.CaseInsensitive = b
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid %s", EnvConcurrency), err)
		}
		c.Concurrency = n
	}
	return nil
}

// FromEnv loads the file named by ANCHOR_CONFIG, if any, and applies the
// remaining ANCHOR_* variables on top.
func FromEnv(ctx context.Context) (*Config, error) {
	cfg, err := Load(ctx, strings.TrimSpace(os.Getenv(EnvConfig)))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ResolverLayout returns the resolver layout for c, defaults applied.
func (c *Config) ResolverLayout() resolver.Layout {
	return resolver.Layout{
		Root:               c.Root,
		LogsDir:            c.Layout.LogsDir,
		DailyDocument:      c.Layout.DailyDocument,
		WeeklyDocument:     c.Layout.WeeklyDocument,
		DiagnosticsDir:     c.Layout.DiagnosticsDir,
		DiagnosticPatterns: c.Layout.DiagnosticPatterns,
		CaseInsensitive:    c.Layout.CaseInsensitive,
	}.WithDefaults()
}

// Validate checks every setting up front so that misconfiguration is
// reported before any bundle is read.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "bundle root is required")
	}
	if _, err := fingerprint.Lookup(c.Algorithm); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid algorithm", err)
	}
	if _, err := identifier.ParseKindName(c.Identifier.Kind); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid identifier kind", err)
	}
	if c.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if err := c.ResolverLayout().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid layout", err)
	}
	return nil
}

// NewEngine validates c and builds the resolver and pipeline it describes.
func (c *Config) NewEngine(opts ...anchor.Option) (*anchor.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	alg, err := fingerprint.Lookup(c.Algorithm)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid algorithm", err)
	}
	kind, err := identifier.ParseKindName(c.Identifier.Kind)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid identifier kind", err)
	}

	r, err := resolver.New(c.ResolverLayout())
	if err != nil {
		return nil, err
	}

	base := []anchor.Option{
		anchor.WithResolver(r),
		anchor.WithAlgorithm(alg),
		anchor.WithKind(kind),
		anchor.WithCaseFolding(c.Layout.CaseInsensitive),
		anchor.WithConcurrency(c.Concurrency),
	}
	return anchor.New(append(base, opts...)...)
}
