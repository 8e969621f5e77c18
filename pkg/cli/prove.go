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
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"

	"github.com/themeradar/anchor/pkg/canonical"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/serializer"
)

func proveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "prove",
		EnableShellCompletion: true,
		Usage:                 "Emit the inclusion proof of one bundle file",
		ArgsUsage:             "<YYYY-MM-DD|YYYY-Www>",
		Description: `Fingerprints the bundle and writes the proof for one file: its leaf, the
ordered leaf list and the root. With the proof a single artifact can later be
checked against the anchored root without the rest of the bundle.

# Examples

  anchor prove 2025-06-01 --path assets/diagnostic/2025-06-01_W63.png
  anchor prove 2025-06-01 --path logs/2025-06-01.md --format json --output proof.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Aliases:  []string{"p"},
				Required: true,
				Usage:    "Bundle-root-relative path of the file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the proof to a file or ConfigMap instead of stdout",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Value:   string(serializer.FormatYAML),
				Usage:   "Proof format: json or yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := bundleArg(cmd)
			if err != nil {
				return err
			}
			rel, err := canonical.NormalizePath(cmd.String("path"))
			if err != nil {
				return errors.ForBundle(errors.ErrCodeInvalidRequest, id, cmd.String("path"), "invalid --path", err)
			}
			e, err := newEngine(ctx, cmd)
			if err != nil {
				return err
			}
			if e.CaseFolding() {
				rel = cases.Fold().String(rel)
			}

			fp, err := e.Fingerprint(ctx, id)
			if err != nil {
				return err
			}
			proof, err := fingerprint.Prove(fp, rel)
			if err != nil {
				return err
			}

			if dest := cmd.String("output"); dest != "" {
				return writeRecord(ctx, dest, cmd.String("format"), proof)
			}
			f, err := serializer.ParseFormat(cmd.String("format"))
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --format", err)
			}
			return serializer.NewWriter(f, stdout(cmd)).Serialize(ctx, proof)
		},
	}
}

func checkProofCmd() *cli.Command {
	return &cli.Command{
		Name:                  "check-proof",
		EnableShellCompletion: true,
		Usage:                 "Check one artifact against an inclusion proof",
		Description: `Recomputes the artifact leaf from its bytes and the root from the proof's
leaf list. With --anchored the root must also equal the anchored fingerprint.

# Examples

  anchor check-proof --proof proof.yaml --file chart.png
  anchor check-proof --proof proof.yaml --file chart.png --anchored "BUNDLE_ROOT_SHA256: 1b9e..."`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "proof",
				Required: true,
				Usage:    "Proof produced by prove (path, http(s) URL or cm://namespace/name)",
			},
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "Artifact to check",
			},
			&cli.StringFlag{
				Name:  "anchored",
				Usage: "Anchored fingerprint the proof root must equal",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proof, err := serializer.Load[fingerprint.Proof](ctx, cmd.String("proof"),
				serializer.WithKubeconfig(cmd.String("kubeconfig")))
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidRequest, "load proof", err)
			}

			content, err := os.ReadFile(cmd.String("file"))
			if err != nil {
				return errors.ForBundle(errors.ErrCodeIOFailure, proof.Bundle, proof.Path, "read artifact", err)
			}

			var anchored fingerprint.Digest
			if s := cmd.String("anchored"); s != "" {
				fp, err := fingerprint.Parse(s)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --anchored", err)
				}
				if fp.Algorithm != proof.Algorithm || fp.Schema != proof.Schema {
					return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf(
						"anchored fingerprint uses %s:%s, proof uses %s:%s",
						fp.Algorithm, fp.Schema, proof.Algorithm, proof.Schema))
				}
				anchored = fp.Root
			}

			if err := proof.Verify(content, anchored); err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout(cmd), "%s: ok\n", proof.Path)
			return err
		},
	}
}
