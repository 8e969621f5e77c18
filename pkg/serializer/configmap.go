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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/header"
	"github.com/themeradar/anchor/pkg/k8s/client"
)

// ConfigMap data keys and labels.
const (
	configMapRecordKey    = "record"
	configMapFormatKey    = "format"
	configMapTimestampKey = "timestamp"
	configMapFieldManager = "anchor"

	LabelName      = "app.kubernetes.io/name"
	LabelComponent = "app.kubernetes.io/component"
	LabelVersion   = "app.kubernetes.io/version"
)

// ConfigMapWriter stores a record in a Kubernetes ConfigMap using
// server-side apply, creating or replacing it atomically.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	client    client.Interface
}

// ConfigMapOption configures a ConfigMapWriter.
type ConfigMapOption func(*ConfigMapWriter)

// WithKubeClient sets the Kubernetes client. Defaults to the shared client
// from the environment's kubeconfig.
func WithKubeClient(c client.Interface) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.client = c
	}
}

// NewConfigMapWriter creates a writer for namespace/name. Table output is
// not readable back, so it is stored as YAML.
func NewConfigMapWriter(namespace, name string, format Format, opts ...ConfigMapOption) *ConfigMapWriter {
	if format.IsUnknown() || format == FormatTable {
		format = FormatYAML
	}
	w := &ConfigMapWriter{namespace: namespace, name: name, format: format}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Serialize applies the ConfigMap holding v.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	kc := w.client
	if kc == nil {
		var err error
		if kc, _, err = client.GetKubeClient(); err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	cm, err := w.build(v)
	if err != nil {
		return err
	}

	slog.Info("applying ConfigMap", "namespace", w.namespace, "name", w.name, "format", w.format)

	if _, err := kc.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: configMapFieldManager,
		Force:        true,
	}); err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// build renders v and wraps it in a ConfigMap apply configuration labelled
// with the record kind and tool version from its header.
func (w *ConfigMapWriter) build(v any) (*accorev1.ConfigMapApplyConfiguration, error) {
	content, err := Marshal(w.format, v)
	if err != nil {
		return nil, err
	}

	kind, version := "record", "unknown"
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if h, ok := v.(interface{ GetHeader() *header.Header }); ok {
		hdr := h.GetHeader()
		if hdr.Kind != "" {
			kind = hdr.Kind.String()
		}
		if s := hdr.Metadata[header.KeyVersion]; s != "" {
			version = s
		}
		if s := hdr.Metadata[header.KeyTimestamp]; s != "" {
			timestamp = s
		}
	}

	return accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			LabelName:      "anchor",
			LabelComponent: kind,
			LabelVersion:   version,
		}).
		WithData(map[string]string{
			configMapRecordKey + "." + w.format.Extension(): string(content),
			configMapFormatKey:    string(w.format),
			configMapTimestampKey: timestamp,
		}), nil
}

// Close is a no-op.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// readConfigMap returns the stored record content and its format.
func readConfigMap(ctx context.Context, kc client.Interface, namespace, name string) ([]byte, Format, error) {
	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := kc.CoreV1().ConfigMaps(namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	format := Format(cm.Data[configMapFormatKey])
	if format.IsUnknown() || format == FormatTable {
		format = FormatYAML
	}
	if data, ok := cm.Data[configMapRecordKey+"."+format.Extension()]; ok {
		return []byte(data), format, nil
	}
	for _, f := range []Format{FormatYAML, FormatJSON} {
		if data, ok := cm.Data[configMapRecordKey+"."+f.Extension()]; ok {
			return []byte(data), f, nil
		}
	}
	return nil, "", fmt.Errorf("ConfigMap %s/%s holds no anchor record", namespace, name)
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: must start with %s", uri, ConfigMapURIScheme)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, ConfigMapURIScheme), "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	namespace, name = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if namespace == "" || name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: namespace and name are required", uri)
	}
	return namespace, name, nil
}
