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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/themeradar/anchor/pkg/errors"
)

// URIScheme is the optional prefix of registry destinations, e.g.
// "oci://ghcr.io/themeradar/anchors:2025-06-01".
const URIScheme = "oci://"

// Reference is a parsed registry destination.
type Reference struct {
	// Registry is the registry host, e.g. "ghcr.io" or "localhost:5000".
	Registry string
	// Repository is the repository path, e.g. "themeradar/anchors".
	Repository string
	// Tag is empty when none was given; callers apply a default.
	Tag string
}

// ParseReference parses an image reference with or without the oci:// scheme.
// Digest references are rejected: a push always targets a tag.
func ParseReference(s string) (*Reference, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), URIScheme)
	if trimmed == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "OCI reference is empty")
	}

	named, err := reference.ParseNormalizedNamed(trimmed)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid OCI reference %q", s), err)
	}
	if _, ok := named.(reference.Digested); ok {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("OCI reference %q must not pin a digest", s))
	}

	r := &Reference{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
	}
	if tagged, ok := named.(reference.Tagged); ok {
		r.Tag = tagged.Tag()
	}
	return r, nil
}

// WithTag returns a copy of r with tag set.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

// Repo returns "registry/repository".
func (r *Reference) Repo() string {
	return r.Registry + "/" + r.Repository
}

// ImageReference returns "registry/repository[:tag]".
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return r.Repo()
	}
	return r.Repo() + ":" + r.Tag
}

// String returns the reference with the oci:// scheme.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// TagFor turns a bundle identifier into a valid tag. Bundle labels are
// already tag-safe; anything else is replaced with '-'.
func TagFor(bundle string) string {
	var b strings.Builder
	for i, c := range bundle {
		ok := c == '_' || c == '-' || c == '.' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if i == 0 && (c == '-' || c == '.') {
			ok = false
		}
		if !ok {
			c = '_'
		}
		b.WriteRune(c)
		if b.Len() == 128 {
			break
		}
	}
	return b.String()
}
