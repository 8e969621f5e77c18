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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/themeradar/anchor/pkg/header"
)

type testRecord struct {
	header.Header `json:",inline" yaml:",inline"`

	Bundle string   `json:"bundle" yaml:"bundle"`
	Files  []string `json:"files" yaml:"files"`
}

func newTestRecord() *testRecord {
	r := &testRecord{Bundle: "2025-06-01", Files: []string{"logs/2025-06-01.md"}}
	r.Init(header.KindBundleAnchor, header.APIVersion, "v0.1.0")
	return r
}

func TestMarshal(t *testing.T) {
	rec := newTestRecord()

	t.Run("json", func(t *testing.T) {
		b, err := Marshal(FormatJSON, rec)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"kind": "BundleAnchor"`)
		assert.Contains(t, string(b), `"bundle": "2025-06-01"`)
	})

	t.Run("yaml", func(t *testing.T) {
		b, err := Marshal(FormatYAML, rec)
		require.NoError(t, err)
		assert.Contains(t, string(b), "kind: BundleAnchor")
		assert.Contains(t, string(b), "apiVersion: "+header.APIVersion)
	})

	t.Run("table", func(t *testing.T) {
		b, err := Marshal(FormatTable, rec)
		require.NoError(t, err)
		out := string(b)
		assert.True(t, strings.HasPrefix(out, "FIELD"))
		assert.Contains(t, out, "Bundle")
		assert.Contains(t, out, "Files.[0]")
		assert.Contains(t, out, "Metadata.version")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Marshal(Format("xml"), rec)
		assert.Error(t, err)
	})
}

func TestWriter_Stdout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("bogus"), &buf)
	require.NoError(t, w.Serialize(context.Background(), newTestRecord()))
	assert.Contains(t, buf.String(), "bundle: 2025-06-01")
	assert.NoError(t, w.Close())
}

func TestNewFileWriterOrStdout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchor.json")

	s, err := NewFileWriterOrStdout(FormatJSON, path)
	require.NoError(t, err)
	require.NoError(t, s.Serialize(context.Background(), newTestRecord()))
	require.NoError(t, s.(Closer).Close())

	got, err := Load[testRecord](context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.Bundle)
	assert.Equal(t, header.KindBundleAnchor, got.Kind)

	s, err = NewFileWriterOrStdout(FormatYAML, "-")
	require.NoError(t, err)
	assert.IsType(t, &Writer{}, s)

	s, err = NewFileWriterOrStdout(FormatYAML, "cm://radar/anchor")
	require.NoError(t, err)
	assert.IsType(t, &ConfigMapWriter{}, s)

	_, err = NewFileWriterOrStdout(FormatYAML, "cm://radar")
	assert.Error(t, err)

	_, err = NewFileWriterOrStdout(FormatYAML, filepath.Join(dir, "missing", "anchor.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchor.yaml")
	b, err := Marshal(FormatYAML, newTestRecord())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	got, err := Load[testRecord](context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/2025-06-01.md"}, got.Files)
	assert.Equal(t, "v0.1.0", got.Metadata[header.KeyVersion])
}

func TestLoad_HTTP(t *testing.T) {
	body, err := Marshal(FormatJSON, newTestRecord())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/raw/anchor.json" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, HttpReaderUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	got, err := Load[testRecord](context.Background(), srv.URL+"/raw/anchor.json")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.Bundle)

	_, err = Load[testRecord](context.Background(), srv.URL+"/raw/missing.json")
	assert.ErrorContains(t, err, "404")
}

func TestLoad_ConfigMap(t *testing.T) {
	content, err := Marshal(FormatYAML, newTestRecord())
	require.NoError(t, err)

	kc := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "anchor-2025-06-01", Namespace: "radar"},
		Data: map[string]string{
			"record.yaml": string(content),
			"format":      "yaml",
		},
	})

	got, err := Load[testRecord](context.Background(), "cm://radar/anchor-2025-06-01", WithLoadKubeClient(kc))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.Bundle)

	_, err = Load[testRecord](context.Background(), "cm://radar/missing", WithLoadKubeClient(kc))
	assert.Error(t, err)
}

func TestConfigMapWriter_Build(t *testing.T) {
	w := NewConfigMapWriter("radar", "anchor-2025-06-01", FormatTable)
	assert.Equal(t, FormatYAML, w.format)

	cm, err := w.build(newTestRecord())
	require.NoError(t, err)
	assert.Equal(t, "yaml", cm.Data["format"])
	assert.Contains(t, cm.Data["record.yaml"], "bundle: 2025-06-01")
	assert.NotEmpty(t, cm.Data["timestamp"])
	assert.Equal(t, "BundleAnchor", cm.Labels[LabelComponent])
	assert.Equal(t, "v0.1.0", cm.Labels[LabelVersion])
}

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		uri       string
		namespace string
		name      string
		wantErr   bool
	}{
		{uri: "cm://radar/anchor", namespace: "radar", name: "anchor"},
		{uri: "cm://radar / anchor ", namespace: "radar", name: "anchor"},
		{uri: "radar/anchor", wantErr: true},
		{uri: "cm://radar/", wantErr: true},
		{uri: "cm:///anchor", wantErr: true},
		{uri: "cm://radar", wantErr: true},
		{uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			ns, name, err := parseConfigMapURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.namespace, ns)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatFromPath("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yml"))
	assert.Equal(t, FormatTable, FormatFromPath("a/b.txt"))
	assert.Equal(t, "txt", FormatTable.Extension())
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, func() {})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
