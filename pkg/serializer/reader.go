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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/themeradar/anchor/pkg/k8s/client"
)

// Reader decodes JSON or YAML records from an io.Reader.
type Reader struct {
	format Format
	input  io.Reader
}

// NewReader creates a Reader. Table output cannot be read back.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatTable {
		return nil, fmt.Errorf("table format does not support deserialization")
	}
	return &Reader{format: format, input: input}, nil
}

// Deserialize decodes the input into v, which must be a pointer.
func (r *Reader) Deserialize(v any) error {
	if r == nil || r.input == nil {
		return fmt.Errorf("reader has no input")
	}
	switch r.format {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", r.format)
	}
	return nil
}

// Source options for Load.
type loadOptions struct {
	kubeClient client.Interface
	kubeconfig string
	http       *HttpReader
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithLoadKubeClient sets the client used for cm:// sources.
func WithLoadKubeClient(c client.Interface) LoadOption {
	return func(o *loadOptions) {
		o.kubeClient = c
	}
}

// WithKubeconfig sets the kubeconfig used for cm:// sources.
func WithKubeconfig(path string) LoadOption {
	return func(o *loadOptions) {
		o.kubeconfig = path
	}
}

// WithHTTPReader sets the reader used for http(s) sources.
func WithHTTPReader(r *HttpReader) LoadOption {
	return func(o *loadOptions) {
		o.http = r
	}
}

// Load reads a record of type T from a file path, an http(s) URL such as a
// published gist, or a ConfigMap URI (cm://namespace/name). The format is
// taken from the file or URL extension; ConfigMaps record their own.
func Load[T any](ctx context.Context, source string, opts ...LoadOption) (*T, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	content, format, err := fetch(ctx, source, o)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(format, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var out T
	if err := r.Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to deserialize %q: %w", source, err)
	}

	slog.Debug("record loaded", "source", source, "format", format, "bytes", len(content))
	return &out, nil
}

func fetch(ctx context.Context, source string, o *loadOptions) ([]byte, Format, error) {
	switch {
	case strings.HasPrefix(source, ConfigMapURIScheme):
		namespace, name, err := parseConfigMapURI(source)
		if err != nil {
			return nil, "", err
		}
		kc := o.kubeClient
		if kc == nil {
			if o.kubeconfig != "" {
				kc, _, err = client.GetKubeClientWithConfig(o.kubeconfig)
			} else {
				kc, _, err = client.GetKubeClient()
			}
			if err != nil {
				return nil, "", fmt.Errorf("failed to get kubernetes client: %w", err)
			}
		}
		return readConfigMap(ctx, kc, namespace, name)

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		hr := o.http
		if hr == nil {
			hr = NewHttpReader()
		}
		b, err := hr.ReadWithContext(ctx, source)
		if err != nil {
			return nil, "", err
		}
		format := FormatYAML
		if u, err := url.Parse(source); err == nil {
			format = FormatFromPath(u.Path)
		}
		if format == FormatTable {
			format = FormatYAML
		}
		return b, format, nil

	default:
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", source, err)
		}
		format := FormatFromPath(source)
		if format == FormatTable {
			return nil, "", fmt.Errorf("table format does not support deserialization: %s", source)
		}
		return b, format, nil
	}
}
