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

package header

import (
	"fmt"
	"time"
)

// APIVersion is the current schema version of every anchor resource.
const APIVersion = "anchor.themeradar.io/v1"

// Metadata keys set by Init.
const (
	KeyTimestamp = "timestamp"
	KeyVersion   = "version"
)

// Kind represents the type of anchor resource.
type Kind string

// Valid Kind constants for all anchor resource types.
const (
	KindBundleAnchor       Kind = "BundleAnchor"
	KindWeeklyRollup       Kind = "WeeklyRollup"
	KindVerificationResult Kind = "VerificationResult"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindBundleAnchor, KindWeeklyRollup, KindVerificationResult:
		return true
	default:
		return false
	}
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair to the Header.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind returns an Option that sets the Kind field of the Header.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion returns an Option that sets the APIVersion field of the Header.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a new Header with the current APIVersion and the provided options.
func New(opts ...Option) *Header {
	h := &Header{
		APIVersion: APIVersion,
		Metadata:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Header carries the Kubernetes-style type information of an anchor resource.
type Header struct {
	// Kind is the type of the resource.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the resource.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata holds the creation timestamp, tool version and free-form labels.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GetHeader returns h. Records embedding Header expose it through this method.
func (h *Header) GetHeader() *Header {
	return h
}

// Init sets kind and apiVersion and resets Metadata to the creation
// timestamp and, when non-empty, the tool version.
func (h *Header) Init(kind Kind, apiVersion string, version string) {
	h.Kind = kind
	h.APIVersion = apiVersion
	h.Metadata = map[string]string{
		KeyTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if version != "" {
		h.Metadata[KeyVersion] = version
	}
}

// Timestamp returns the parsed creation timestamp, or the zero time.
func (h *Header) Timestamp() time.Time {
	t, err := time.Parse(time.RFC3339, h.Metadata[KeyTimestamp])
	if err != nil {
		return time.Time{}
	}
	return t
}

// Check verifies that the header describes a resource of the given kind in
// the current API version.
func (h *Header) Check(kind Kind) error {
	if h.APIVersion != APIVersion {
		return fmt.Errorf("unsupported apiVersion %q (want %s)", h.APIVersion, APIVersion)
	}
	if h.Kind != kind {
		return fmt.Errorf("unexpected kind %q (want %s)", h.Kind, kind)
	}
	return nil
}
