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
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"

	"github.com/themeradar/anchor/pkg/bundle"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/identifier"
)

// Source records how a file was attributed to a bundle.
type Source string

const (
	// SourceDocument is the primary document itself.
	SourceDocument Source = "document"
	// SourceReference is a file referenced from the primary document.
	SourceReference Source = "reference"
	// SourceConvention is a file found at an identifier-keyed location.
	SourceConvention Source = "convention"
)

// Candidate is one file attributed to a bundle.
type Candidate struct {
	// Path is Root-relative with forward slashes.
	Path   string `json:"path" yaml:"path"`
	Source Source `json:"source" yaml:"source"`
}

// Resolution is the file set of one bundle. The primary document is always
// the first candidate.
type Resolution struct {
	ID         identifier.ID `json:"-" yaml:"-"`
	Document   string        `json:"document" yaml:"document"`
	Candidates []Candidate   `json:"candidates" yaml:"candidates"`

	// document holds the bytes the references were parsed from, so the
	// snapshot hashes exactly what was inspected.
	document []byte
}

// Paths returns the candidate paths in resolution order.
func (r *Resolution) Paths() []string {
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.Path)
	}
	return out
}

// Resolver locates the files of a bundle below a fixed root. It never scans
// the repository recursively and never looks at file timestamps: a file
// belongs to a bundle only when the primary document references it or it
// sits at a location keyed by the identifier.
type Resolver struct {
	layout Layout
	root   string
	md     goldmark.Markdown
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMarkdown sets the markdown parser used to extract references.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(r *Resolver) {
		if md != nil {
			r.md = md
		}
	}
}

// New creates a Resolver for layout. Empty layout fields take their defaults.
// The root must exist and be a directory.
func New(layout Layout, opts ...Option) (*Resolver, error) {
	layout = layout.WithDefaults()
	if err := layout.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid bundle layout", err)
	}

	abs, err := filepath.Abs(layout.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid bundle root", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, fmt.Sprintf("bundle root %s", abs), err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, fmt.Sprintf("bundle root %s", root), err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("bundle root %s is not a directory", root))
	}

	r := &Resolver{
		layout: layout,
		root:   root,
		md:     goldmark.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Layout returns the effective layout.
func (r *Resolver) Layout() Layout {
	return r.layout
}

// Root returns the absolute, symlink-free bundle root.
func (r *Resolver) Root() string {
	return r.root
}

// Check reports whether the bundle root is still a reachable directory.
func (r *Resolver) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(r.root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, fmt.Sprintf("bundle root %s", r.root), err)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeIOFailure, fmt.Sprintf("bundle root %s is not a directory", r.root))
	}
	return nil
}

// Resolve returns the files of bundle id: the primary document, every file
// it references, and every file at an identifier-keyed diagnostic location.
func (r *Resolver) Resolve(ctx context.Context, id identifier.ID) (*Resolution, error) {
	if id.IsZero() {
		return nil, errors.ForBundle(errors.ErrCodeInvalidIdentifier, `""`, "", "bundle identifier is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, interrupted(id, err)
	}

	bid := id.String()
	docRel := r.layout.DocumentPath(id)

	if err := r.requireFile(bid, docRel); err != nil {
		if errors.HasCode(err, errors.ErrCodeIncompleteBundle) {
			return nil, errors.ForBundle(errors.ErrCodeBundleNotFound, bid, docRel,
				"primary document not found; the publish step has not run", nil)
		}
		return nil, err
	}

	src, err := os.ReadFile(r.abs(docRel))
	if err != nil {
		return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, docRel, "read primary document", err)
	}

	res := &Resolution{ID: id, Document: docRel, document: src}
	seen := map[string]bool{}
	folded := map[string]string{}
	add := func(rel string, source Source) error {
		if seen[rel] {
			return nil
		}
		if r.layout.CaseInsensitive {
			key := cases.Fold().String(rel)
			if prev, ok := folded[key]; ok {
				if !r.sameFile(prev, rel) {
					return errors.ForBundle(errors.ErrCodeDuplicatePath, bid, rel,
						fmt.Sprintf("%q and %q differ only in case", prev, rel), nil)
				}
				r.logger.Debug("bundle file spelled differently", "bundle", bid, "path", prev, "spelling", rel)
				seen[rel] = true
				return nil
			}
			folded[key] = rel
		}
		seen[rel] = true
		res.Candidates = append(res.Candidates, Candidate{Path: rel, Source: source})
		r.logger.Debug("bundle file attributed", "bundle", bid, "path", rel, "source", source)
		return nil
	}
	if err := add(docRel, SourceDocument); err != nil {
		return nil, err
	}

	for _, ref := range extractReferences(r.md, src) {
		rel := joinReference(docRel, ref.dest)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return nil, errors.ForBundle(errors.ErrCodePathEscape, bid, ref.dest,
				"document reference resolves outside the bundle root", nil)
		}
		if !ref.image && !r.layout.inDiagnostics(rel) {
			continue
		}
		if err := r.requireFile(bid, rel); err != nil {
			return nil, err
		}
		if err := add(rel, SourceReference); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, interrupted(id, err)
	}

	matches, err := r.conventional(id)
	if err != nil {
		return nil, err
	}
	for _, rel := range matches {
		if err := add(rel, SourceConvention); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("bundle resolved", "bundle", bid, "files", len(res.Candidates))
	return res, nil
}

// Snapshot reads every candidate of res exactly once and returns the
// entries with their byte-exact content.
func (r *Resolver) Snapshot(ctx context.Context, res *Resolution) ([]bundle.Entry, error) {
	if res == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "resolution is nil")
	}
	bid := res.ID.String()

	entries := make([]bundle.Entry, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, interrupted(res.ID, err)
		}

		var content []byte
		if c.Source == SourceDocument && res.document != nil {
			content = res.document
		} else {
			b, err := os.ReadFile(r.abs(c.Path))
			if err != nil {
				if stderrors.Is(err, fs.ErrNotExist) {
					return nil, errors.ForBundle(errors.ErrCodeIncompleteBundle, bid, c.Path,
						"file disappeared before it was read", err)
				}
				return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, c.Path, "read failed", err)
			}
			content = b
		}
		entries = append(entries, bundle.Entry{Path: c.Path, Content: content})
	}
	return entries, nil
}

// conventional returns the regular files matching the diagnostic patterns.
func (r *Resolver) conventional(id identifier.ID) ([]string, error) {
	bid := id.String()
	diagAbs := r.abs(r.layout.DiagnosticsDir)

	info, err := os.Stat(diagAbs)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, r.layout.DiagnosticsDir, "stat diagnostics directory", err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	fsys := os.DirFS(diagAbs)
	var out []string
	for _, pattern := range r.layout.patterns(id) {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, r.layout.DiagnosticsDir,
				fmt.Sprintf("match diagnostic pattern %q", pattern), err)
		}
		for _, m := range matches {
			rel := path.Join(r.layout.DiagnosticsDir, m)
			info, err := r.stat(bid, rel)
			if err != nil {
				return nil, err
			}
			if info.Mode().IsRegular() {
				out = append(out, rel)
			}
		}
	}
	return out, nil
}

// stat returns the file info of the Root-relative rel, following a symlink
// only when its target stays inside the root. A missing file is
// INCOMPLETE_BUNDLE.
func (r *Resolver) stat(bid, rel string) (fs.FileInfo, error) {
	abs := r.abs(rel)

	info, err := os.Lstat(abs)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ForBundle(errors.ErrCodeIncompleteBundle, bid, rel, "file not found", nil)
		}
		return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, rel, "stat failed", err)
	}

	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ForBundle(errors.ErrCodeIncompleteBundle, bid, rel, "symlink target not found", nil)
		}
		return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, rel, "resolve symlinks", err)
	}
	if !r.contains(target) {
		return nil, errors.ForBundle(errors.ErrCodePathEscape, bid, rel,
			fmt.Sprintf("resolves to %s, outside the bundle root", target), nil)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		if info, err = os.Stat(target); err != nil {
			return nil, errors.ForBundle(errors.ErrCodeIOFailure, bid, rel, "stat symlink target", err)
		}
	}
	return info, nil
}

// requireFile is stat for files the bundle cannot do without.
func (r *Resolver) requireFile(bid, rel string) error {
	info, err := r.stat(bid, rel)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.ForBundle(errors.ErrCodeIncompleteBundle, bid, rel,
			fmt.Sprintf("expected a regular file, found %s", describe(info.Mode())), nil)
	}
	return nil
}

func describe(m fs.FileMode) string {
	if m.IsDir() {
		return "a directory"
	}
	return "mode " + m.Type().String()
}

// contains reports whether the absolute, symlink-free p lies inside the root.
func (r *Resolver) contains(p string) bool {
	rel, err := filepath.Rel(r.root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (r *Resolver) abs(rel string) string {
	return filepath.Join(r.root, filepath.FromSlash(rel))
}

// sameFile reports whether two Root-relative spellings name one file, as
// they do on a case-insensitive filesystem.
func (r *Resolver) sameFile(a, b string) bool {
	ia, err := os.Stat(r.abs(a))
	if err != nil {
		return false
	}
	ib, err := os.Stat(r.abs(b))
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

func interrupted(id identifier.ID, err error) error {
	code := errors.ErrCodeInternal
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
	}
	return errors.ForBundle(code, id.String(), "", "resolution interrupted", err)
}
