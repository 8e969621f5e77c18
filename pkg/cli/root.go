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

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/themeradar/anchor/pkg/anchor"
	"github.com/themeradar/anchor/pkg/config"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/logging"
	"github.com/themeradar/anchor/pkg/serializer"
)

const (
	name           = "anchor"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var kubeconfigFlag = &cli.StringFlag{
	Name:    "kubeconfig",
	Usage:   "Path to kubeconfig for cm:// sources and destinations (default: in-cluster or ~/.kube/config)",
	Sources: cli.EnvVars("KUBECONFIG"),
}

// Execute runs the anchor CLI and exits non-zero on failure. The error is
// printed to stderr as "anchor: bundle <id>: [<CODE>] <message>".
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Fingerprint dated publication bundles",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Description: `anchor computes one deterministic root fingerprint over a dated bundle:
the daily or weekly markdown log and the diagnostic artifacts it references or
that are stored under its identifier. The fingerprint line is the only output
on stdout; logs and errors go to stderr.

Configuration is layered: defaults, then --config (YAML), then ANCHOR_*
environment variables, then flags.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (path, http(s) URL or cm://namespace/name)",
				Sources: cli.EnvVars(config.EnvConfig),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Bundle root directory",
				Value:   ".",
				Sources: cli.EnvVars(config.EnvRoot),
			},
			&cli.StringFlag{
				Name:    "algorithm",
				Usage:   fmt.Sprintf("Hash algorithm (%s)", strings.Join(fingerprint.Names(), ", ")),
				Value:   fingerprint.Default.Name,
				Sources: cli.EnvVars(config.EnvAlgorithm),
			},
			&cli.StringFlag{
				Name:    "identifier-kind",
				Usage:   "Accept only daily or weekly identifiers (default: both)",
				Sources: cli.EnvVars(config.EnvIdentifierKind),
			},
			&cli.BoolFlag{
				Name:    "case-insensitive",
				Usage:   "Fold path case; use when the bundle root is on a case-insensitive filesystem",
				Sources: cli.EnvVars(config.EnvCaseInsensitive),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Bundles fingerprinted in parallel by batch",
				Sources: cli.EnvVars(config.EnvConcurrency),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			kubeconfigFlag,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			fingerprintCmd(),
			batchCmd(),
			verifyCmd(),
			proveCmd(),
			checkProofCmd(),
			rollupCmd(),
			pushCmd(),
		},
	}
}

// loadConfig layers the config file, then explicitly set flags (including
// their environment sources) over the defaults.
func loadConfig(ctx context.Context, cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(ctx, cmd.String("config"), serializer.WithKubeconfig(cmd.String("kubeconfig")))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("root") {
		cfg.Root = cmd.String("root")
	}
	if cmd.IsSet("algorithm") {
		cfg.Algorithm = cmd.String("algorithm")
	}
	if cmd.IsSet("identifier-kind") {
		cfg.Identifier.Kind = cmd.String("identifier-kind")
	}
	if cmd.IsSet("case-insensitive") {
		cfg.Layout.CaseInsensitive = cmd.Bool("case-insensitive")
	}
	if cmd.IsSet("concurrency") {
		cfg.Concurrency = int(cmd.Int("concurrency"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEngine(ctx context.Context, cmd *cli.Command) (*anchor.Engine, error) {
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return cfg.NewEngine()
}

// bundleArg returns the single positional bundle identifier.
func bundleArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s requires exactly one bundle identifier, got %d", cmd.Name, cmd.Args().Len()))
	}
	return cmd.Args().First(), nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// writeRecord serializes v to dest (file or cm://). Stdout is reserved
// for the result line, so "-" is rejected.
func writeRecord(ctx context.Context, dest, format string, v any) error {
	if dest == "-" {
		return errors.New(errors.ErrCodeInvalidRequest, "records cannot be written to stdout; give a file or cm:// destination")
	}

	f := serializer.FormatFromPath(dest)
	if format != "" {
		var err error
		if f, err = serializer.ParseFormat(format); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --format", err)
		}
	}

	s, err := serializer.NewFileWriterOrStdout(f, dest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, fmt.Sprintf("open %s", dest), err)
	}
	if c, ok := s.(serializer.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				slog.Warn("failed to close record destination", "destination", dest, "error", cerr)
			}
		}()
	}

	if err := s.Serialize(ctx, v); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, fmt.Sprintf("write record to %s", dest), err)
	}
	slog.Info("record written", "destination", dest)
	return nil
}

// formatError renders err for stderr, naming the bundle and failure kind
// when err carries them.
func formatError(err error) string {
	var se *errors.StructuredError
	if !stderrors.As(err, &se) {
		return fmt.Sprintf("%s: %v", name, err)
	}

	msg := se.Message
	if se.Cause != nil {
		msg += ": " + se.Cause.Error()
	}
	if b := se.Bundle(); b != "" {
		msg = strings.TrimPrefix(msg, "bundle "+b+": ")
		return fmt.Sprintf("%s: bundle %s: [%s] %s", name, b, se.Code, msg)
	}
	return fmt.Sprintf("%s: [%s] %s", name, se.Code, msg)
}
