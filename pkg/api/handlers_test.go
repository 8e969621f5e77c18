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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themeradar/anchor/pkg/anchor"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/record"
	"github.com/themeradar/anchor/pkg/resolver"
	"github.com/themeradar/anchor/pkg/server"
)

const workedRoot = "sha256:v1:1b9ec74f3ec28d19577453e0bf298825636b235e38dc724c43aaa82d74a7c342"

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, content, 0o600))
}

// newTestServer serves a bundle root holding the 2025-06-01 example bundle.
func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "logs/2025-06-01.md", []byte("# Daily\n![chart](../assets/diagnostic/2025-06-01_W63.png)\n"))
	writeFile(t, root, "assets/diagnostic/2025-06-01_W63.png", []byte("\x89PNG"))

	r, err := resolver.New(resolver.DefaultLayout(root))
	require.NoError(t, err)
	e, err := anchor.New(anchor.WithResolver(r))
	require.NoError(t, err)

	s := newServer(e)
	s.SetReady(true)
	return s.Handler(), root
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "anchord", name)
	assert.Equal(t, "dev", versionDefault)
	assert.NotEmpty(t, version)
	assert.NotEmpty(t, commit)
	assert.NotEmpty(t, date)
}

func TestFingerprintEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bundles/2025-06-01/fingerprint", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var rec record.BundleAnchor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "2025-06-01", rec.Bundle)
	assert.Len(t, rec.Files, 2)
	assert.Equal(t, "test", rec.Metadata["version"])

	fp, err := rec.ToFingerprint()
	require.NoError(t, err)
	assert.Equal(t, "BUNDLE_ROOT_SHA256: "+fp.Hex(), rec.Line)
}

func TestFingerprintEndpointErrors(t *testing.T) {
	h, root := newTestServer(t)
	writeFile(t, root, "logs/2025-06-02.md", []byte("![gone](../assets/diagnostic/missing.png)\n"))

	tests := []struct {
		name   string
		path   string
		status int
		code   errors.ErrorCode
	}{
		{name: "invalid identifier", path: "/v1/bundles/2025-13-01/fingerprint", status: http.StatusBadRequest, code: errors.ErrCodeInvalidIdentifier},
		{name: "bundle not found", path: "/v1/bundles/2025-06-03/fingerprint", status: http.StatusNotFound, code: errors.ErrCodeBundleNotFound},
		{name: "incomplete bundle", path: "/v1/bundles/2025-06-02/fingerprint", status: http.StatusUnprocessableEntity, code: errors.ErrCodeIncompleteBundle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.status, w.Code, w.Body.String())

			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.code), resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func postVerify(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader(data)))
	return w
}

func TestVerifyEndpoint(t *testing.T) {
	h, root := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bundles/2025-06-01/fingerprint", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var rec record.BundleAnchor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))

	t.Run("fingerprint matches", func(t *testing.T) {
		w := postVerify(t, h, VerifyRequest{Bundle: "2025-06-01", Fingerprint: rec.Fingerprint})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var v record.VerificationResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
		assert.True(t, v.Match)
		assert.Equal(t, rec.Fingerprint, v.Actual)
	})

	t.Run("record reports differences", func(t *testing.T) {
		writeFile(t, root, "assets/diagnostic/2025-06-01_W63.png", []byte("\x89PNG changed"))

		w := postVerify(t, h, VerifyRequest{Bundle: "2025-06-01", Record: &rec})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var v record.VerificationResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
		assert.False(t, v.Match)
		require.Len(t, v.Differences, 1)
		assert.Equal(t, "assets/diagnostic/2025-06-01_W63.png", v.Differences[0].Path)
		assert.Equal(t, anchor.ChangeModified, v.Differences[0].Change)
	})
}

func TestVerifyEndpointBadRequests(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing bundle", body: VerifyRequest{Fingerprint: workedRoot}},
		{name: "missing expected", body: VerifyRequest{Bundle: "2025-06-01"}},
		{name: "unparseable fingerprint", body: VerifyRequest{Bundle: "2025-06-01", Fingerprint: "md5:v1:00"}},
		{name: "unknown field", body: map[string]string{"bundle": "2025-06-01", "root": "00"}},
		{name: "record for another bundle", body: VerifyRequest{Bundle: "2025-06-01", Record: &record.BundleAnchor{Bundle: "2025-06-02"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postVerify(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(errors.ErrCodeInvalidRequest), resp.Code)
		})
	}
}

func TestVerifyEndpointMethod(t *testing.T) {
	h, _ := newTestServer(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/verify", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestReadyTracksBundleRoot(t *testing.T) {
	h, root := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, os.RemoveAll(root))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Contains(t, resp.Checks, "bundle-root")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "liveness ignores readiness checks")
}
