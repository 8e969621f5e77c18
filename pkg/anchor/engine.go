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

package anchor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/themeradar/anchor/pkg/bundle"
	"github.com/themeradar/anchor/pkg/canonical"
	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/identifier"
	"github.com/themeradar/anchor/pkg/resolver"
)

// Engine runs the resolve, canonicalize and hash pipeline. An Engine holds
// only configuration and is safe for concurrent use.
type Engine struct {
	resolver    *resolver.Resolver
	algorithm   fingerprint.Algorithm
	kind        identifier.Kind
	foldCase    bool
	concurrency int
	logger      *slog.Logger
}

// Option is a functional option for configuring Engine instances.
type Option func(*Engine)

// WithResolver sets the bundle resolver. Required.
func WithResolver(r *resolver.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithAlgorithm sets the digest algorithm. Defaults to SHA-256.
func WithAlgorithm(alg fingerprint.Algorithm) Option {
	return func(e *Engine) {
		e.algorithm = alg
	}
}

// WithKind restricts accepted identifiers to one kind. Defaults to any.
func WithKind(k identifier.Kind) Option {
	return func(e *Engine) {
		e.kind = k
	}
}

// WithCaseFolding folds paths before ordering, for bundles stored on
// case-insensitive filesystems.
func WithCaseFolding(fold bool) Option {
	return func(e *Engine) {
		e.foldCase = fold
	}
}

// WithConcurrency sets how many bundles FingerprintAll processes at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		algorithm:   fingerprint.Default,
		kind:        identifier.KindAny,
		concurrency: defaults.BatchConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "anchor engine requires a resolver")
	}
	if !e.foldCase && e.resolver.Layout().CaseInsensitive {
		e.foldCase = true
	}
	return e, nil
}

// Algorithm returns the configured digest algorithm.
func (e *Engine) Algorithm() fingerprint.Algorithm {
	return e.algorithm
}

// CaseFolding reports whether manifest paths are case-folded.
func (e *Engine) CaseFolding() bool {
	return e.foldCase
}

// Resolver returns the configured resolver.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// Result is the outcome of fingerprinting one bundle. Exactly one of
// Fingerprint and Err is set.
type Result struct {
	// ID is the identifier as supplied by the caller.
	ID          string                   `json:"id" yaml:"id"`
	Resolution  *resolver.Resolution     `json:"-" yaml:"-"`
	Manifest    *bundle.Manifest         `json:"-" yaml:"-"`
	Fingerprint *fingerprint.Fingerprint `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Err         error                    `json:"-" yaml:"-"`
	Duration    time.Duration            `json:"-" yaml:"-"`
}

// Fingerprint computes the root fingerprint of bundle id.
func (e *Engine) Fingerprint(ctx context.Context, id string) (*fingerprint.Fingerprint, error) {
	res, err := e.Run(ctx, id)
	if err != nil {
		return nil, err
	}
	return res.Fingerprint, nil
}

// Run fingerprints bundle id and returns every intermediate product: the
// resolution, the canonical manifest and the fingerprint.
func (e *Engine) Run(ctx context.Context, id string) (*Result, error) {
	return e.run(ctx, id, e.algorithm)
}

func (e *Engine) run(ctx context.Context, raw string, alg fingerprint.Algorithm) (*Result, error) {
	start := time.Now()
	kind := e.kind.String()

	id, err := identifier.ParseKind(raw, e.kind)
	if err != nil {
		return nil, e.observe(kind, start, err)
	}
	kind = id.Kind().String()

	res, err := e.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, e.observe(kind, start, err)
	}

	entries, err := e.resolver.Snapshot(ctx, res)
	if err != nil {
		return nil, e.observe(kind, start, err)
	}

	manifest, err := canonical.Canonicalize(id, entries, canonical.WithCaseFolding(e.foldCase))
	if err != nil {
		return nil, e.observe(kind, start, err)
	}

	fp, err := fingerprint.Hash(manifest, fingerprint.WithAlgorithm(alg))
	if err != nil {
		return nil, e.observe(kind, start, err)
	}

	bundleFiles.Observe(float64(manifest.Len()))
	bundleBytes.Observe(float64(manifest.TotalBytes()))
	_ = e.observe(kind, start, nil)

	e.logger.Info("bundle fingerprinted",
		"bundle", id.String(),
		"files", manifest.Len(),
		"bytes", manifest.TotalBytes(),
		"root", fp.String())

	return &Result{
		ID:          raw,
		Resolution:  res,
		Manifest:    manifest,
		Fingerprint: fp,
		Duration:    time.Since(start),
	}, nil
}

func (e *Engine) observe(kind string, start time.Time, err error) error {
	result := "ok"
	if err != nil {
		result = string(errors.CodeOf(err))
		if result == "" {
			result = string(errors.ErrCodeInternal)
		}
	}
	fingerprintsTotal.WithLabelValues(kind, result).Inc()
	fingerprintDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	return err
}

// FingerprintAll fingerprints every id in parallel. Each bundle is
// independent: a failure is recorded in its Result and never cancels the
// others. Results are returned in input order.
func (e *Engine) FingerprintAll(ctx context.Context, ids []string) []Result {
	results := make([]Result, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			start := time.Now()
			r, err := e.Run(ctx, id)
			if err != nil {
				results[i] = Result{ID: id, Err: err, Duration: time.Since(start)}
				e.logger.Warn("bundle fingerprint failed", "bundle", id, "error", err)
				return nil
			}
			results[i] = *r
			return nil
		})
	}
	_ = g.Wait()

	return results
}
