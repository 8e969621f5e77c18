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

// Package header provides the common type header of anchor records.
//
// Every serialized resource starts with Kubernetes-style type fields so a
// reader can tell what it holds before decoding the rest:
//
//	kind: BundleAnchor
//	apiVersion: anchor.themeradar.io/v1
//	metadata:
//	  timestamp: "2025-06-01T21:04:05Z"
//	  version: v0.3.0
//
// Kinds:
//   - BundleAnchor: the fingerprint of one bundle
//   - WeeklyRollup: the combined root of a week's daily roots
//   - VerificationResult: the outcome of recomputing a recorded fingerprint
//
// Readers call Check before trusting the payload:
//
//	if err := rec.Header.Check(header.KindBundleAnchor); err != nil {
//	    return err
//	}
package header
