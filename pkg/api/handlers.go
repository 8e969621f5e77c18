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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/themeradar/anchor/pkg/anchor"
	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/record"
	"github.com/themeradar/anchor/pkg/serializer"
	"github.com/themeradar/anchor/pkg/server"
)

// Route patterns served by Handlers.
const (
	RouteFingerprint = "GET /v1/bundles/{id}/fingerprint"
	RouteVerify      = "POST /v1/verify"
)

// VerifyRequest is the body of POST /v1/verify. Either Fingerprint or
// Record must be set; a record also yields per-file differences.
type VerifyRequest struct {
	Bundle      string               `json:"bundle"`
	Fingerprint string               `json:"fingerprint,omitempty"`
	Record      *record.BundleAnchor `json:"record,omitempty"`
}

// Handlers serves the anchor API on top of an Engine.
type Handlers struct {
	engine  *anchor.Engine
	version string
}

// NewHandlers returns handlers backed by e. version is stamped on records.
func NewHandlers(e *anchor.Engine, version string) *Handlers {
	return &Handlers{engine: e, version: version}
}

// Routes returns the handler map for server.WithHandler.
func (h *Handlers) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		RouteFingerprint: h.Fingerprint,
		RouteVerify:      h.Verify,
	}
}

// Fingerprint handles GET /v1/bundles/{id}/fingerprint and responds with the
// BundleAnchor record of the bundle.
func (h *Handlers) Fingerprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaults.FingerprintHandlerTimeout)
	defer cancel()

	res, err := h.engine.Run(ctx, r.PathValue("id"))
	if err != nil {
		server.WriteErrorFromErr(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	serializer.RespondJSON(w, http.StatusOK, record.FromResult(res, h.version))
}

// Verify handles POST /v1/verify. A mismatch is a successful response with
// match set to false; only pipeline failures are errors.
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaults.VerifyHandlerTimeout)
	defer cancel()

	var req VerifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, defaults.MaxVerifyBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid verify request body", err))
		return
	}

	expected, err := req.expected()
	if err != nil {
		server.WriteErrorFromErr(w, r, err)
		return
	}

	v, err := h.engine.Verify(ctx, req.Bundle, expected)
	if err != nil {
		server.WriteErrorFromErr(w, r, err)
		return
	}

	slog.Debug("verify request served", "bundle", v.Bundle, "match", v.Match,
		"requestID", server.RequestID(r.Context()))
	serializer.RespondJSON(w, http.StatusOK, record.NewVerificationResult(v, h.version))
}

func (req *VerifyRequest) expected() (*fingerprint.Fingerprint, error) {
	switch {
	case req.Bundle == "":
		return nil, errors.New(errors.ErrCodeInvalidRequest, "bundle is required")
	case req.Record != nil && req.Fingerprint != "":
		return nil, errors.New(errors.ErrCodeInvalidRequest, "set either fingerprint or record, not both")
	case req.Record != nil:
		if req.Record.Bundle != "" && req.Record.Bundle != req.Bundle {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("record is for bundle %s, not %s", req.Record.Bundle, req.Bundle))
		}
		fp, err := req.Record.ToFingerprint()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid record", err)
		}
		return fp, nil
	case req.Fingerprint != "":
		fp, err := fingerprint.Parse(req.Fingerprint)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid fingerprint", err)
		}
		return fp, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "fingerprint or record is required")
	}
}
