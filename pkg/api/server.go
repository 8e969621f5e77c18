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
	"log/slog"

	"github.com/themeradar/anchor/pkg/anchor"
	"github.com/themeradar/anchor/pkg/config"
	"github.com/themeradar/anchor/pkg/logging"
	"github.com/themeradar/anchor/pkg/server"
)

const (
	name           = "anchord"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/themeradar/anchor/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown. Configuration
// comes from ANCHOR_CONFIG and the other ANCHOR_* environment variables.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	cfg, err := config.FromEnv(ctx)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	e, err := cfg.NewEngine()
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		return err
	}
	slog.Info("serving bundles", "root", e.Resolver().Root(), "algorithm", e.Algorithm().String())

	if err := newServer(e).Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// newServer wires the bundle handlers and the bundle root readiness check.
func newServer(e *anchor.Engine, opts ...server.Option) *server.Server {
	return server.New(append([]server.Option{
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(NewHandlers(e, version).Routes()),
		server.WithReadinessCheck("bundle-root", e.Resolver().Check),
	}, opts...)...)
}
