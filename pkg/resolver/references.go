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
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// reference is a local destination found in the primary document.
type reference struct {
	dest  string
	image bool
}

// extractReferences returns the local image and link destinations of a
// markdown document in document order. Remote URLs, fragments and other
// schemes are skipped.
func extractReferences(md goldmark.Markdown, src []byte) []reference {
	doc := md.Parser().Parse(text.NewReader(src))

	var refs []reference
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			if d, ok := localDestination(string(node.Destination)); ok {
				refs = append(refs, reference{dest: d, image: true})
			}
		case *ast.Link:
			if d, ok := localDestination(string(node.Destination)); ok {
				refs = append(refs, reference{dest: d})
			}
		}
		return ast.WalkContinue, nil
	})
	return refs
}

// localDestination strips query and fragment from a destination and reports
// whether what remains names a local file.
func localDestination(dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return "", false
	}

	u, err := url.Parse(dest)
	if err != nil {
		// Not URL-shaped; treat as a plain relative path.
		return dest, true
	}
	if u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// joinReference resolves dest against the directory of the document at
// docRel. A leading "/" anchors dest at the bundle root. The result is
// cleaned but may still climb above the root.
func joinReference(docRel, dest string) string {
	if strings.HasPrefix(dest, "/") {
		return path.Clean(strings.TrimPrefix(dest, "/"))
	}
	return path.Clean(path.Join(path.Dir(docRel), dest))
}
