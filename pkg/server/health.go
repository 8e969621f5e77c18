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


package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/serializer"
)

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Checks maps each failed readiness check to its error.
	Checks map[string]string `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// handleHealth reports liveness only; it never runs readiness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now()})
}

// handleReady reports 503 while the server is starting or shutting down, or
// when any readiness check fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	resp := HealthResponse{Status: "ready", Timestamp: time.Now()}
	if !ready {
		resp.Status = "not_ready"
		resp.Reason = "service is initializing or shutting down"
		serializer.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if failed := s.runChecks(r.Context()); len(failed) > 0 {
		resp.Status = "not_ready"
		resp.Reason = "readiness checks failed"
		resp.Checks = failed
		serializer.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// runChecks returns the error text of every failing check by name.
func (s *Server) runChecks(ctx context.Context) map[string]string {
	if len(s.checks) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaults.ReadinessCheckTimeout)
	defer cancel()

	var failed map[string]string
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			if failed == nil {
				failed = make(map[string]string)
			}
			failed[c.Name] = err.Error()
			slog.Warn("readiness check failed", "check", c.Name, "error", err)
		}
	}
	return failed
}
