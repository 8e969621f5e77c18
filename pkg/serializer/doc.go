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

// Package serializer writes and reads anchor records.
//
// Output formats:
//   - json: indented JSON
//   - yaml: YAML with two-space indent
//   - table: FIELD/VALUE rows for humans (write-only)
//
// Destinations are chosen by path:
//
//	""  or "-"                 stdout
//	cm://namespace/name        Kubernetes ConfigMap (server-side apply)
//	anything else              local file
//
// Records are read back with Load from a file, an http(s) URL or a
// ConfigMap URI:
//
//	rec, err := serializer.Load[record.BundleAnchor](ctx, "https://gist.example.com/raw/anchor.yaml")
//
// For HTTP handlers, RespondJSON buffers the body before writing headers.
package serializer
