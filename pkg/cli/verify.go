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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/fingerprint"
	"github.com/themeradar/anchor/pkg/record"
	"github.com/themeradar/anchor/pkg/serializer"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "verify",
		EnableShellCompletion: true,
		Usage:                 "Recompute a bundle fingerprint and compare it with a recorded one",
		ArgsUsage:             "<YYYY-MM-DD|YYYY-Www>",
		Description: `Recomputes the fingerprint of the bundle with the recorded algorithm and
prints the recomputed line on stdout. Exits 0 only when the roots match.

The expected value is either given directly with --expected (text form,
"BUNDLE_ROOT_SHA256: <hex>" line, or bare hex) or read from an anchor record
with --record. A record also lists which files were added, removed or
modified since it was taken.

# Examples

  anchor verify 2025-06-01 --expected "BUNDLE_ROOT_SHA256: 1b9e..."
  anchor verify 2025-06-01 --record anchors/2025-06-01.yaml
  anchor verify 2025-06-01 --record https://gist.githubusercontent.com/.../2025-06-01.yaml
  anchor verify 2025-06-01 --record cm://radar/anchor-2025-06-01`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "expected",
				Aliases: []string{"e"},
				Usage:   "Expected fingerprint",
			},
			&cli.StringFlag{
				Name:    "record",
				Aliases: []string{"r"},
				Usage:   "Anchor record to verify against (path, http(s) URL or cm://namespace/name)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Also write the verification result record to a file or ConfigMap",
			},
			recordFormatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := bundleArg(cmd)
			if err != nil {
				return err
			}
			expected, err := expectedFingerprint(ctx, cmd, id)
			if err != nil {
				return err
			}
			e, err := newEngine(ctx, cmd)
			if err != nil {
				return err
			}

			v, err := e.Verify(ctx, id, expected)
			if err != nil {
				return err
			}

			if dest := cmd.String("output"); dest != "" {
				if err := writeRecord(ctx, dest, cmd.String("format"), record.NewVerificationResult(v, version)); err != nil {
					return err
				}
			}

			if _, err := fmt.Fprintln(stdout(cmd), v.Actual.Line()); err != nil {
				return err
			}
			for _, d := range v.Differences {
				fmt.Fprintf(stderr(cmd), "%s: %s %s\n", name, d.Change, d.Path)
			}
			return v.Err()
		},
	}
}

func expectedFingerprint(ctx context.Context, cmd *cli.Command, id string) (*fingerprint.Fingerprint, error) {
	text, source := cmd.String("expected"), cmd.String("record")
	switch {
	case text != "" && source != "":
		return nil, errors.New(errors.ErrCodeInvalidRequest, "use either --expected or --record, not both")
	case text != "":
		fp, err := fingerprint.Parse(text)
		if err != nil {
			return nil, errors.ForBundle(errors.ErrCodeInvalidRequest, id, "", "invalid --expected", err)
		}
		return fp, nil
	case source != "":
		rec, err := serializer.Load[record.BundleAnchor](ctx, source,
			serializer.WithKubeconfig(cmd.String("kubeconfig")))
		if err != nil {
			return nil, errors.ForBundle(errors.ErrCodeInvalidRequest, id, "", "load record", err)
		}
		if rec.Bundle != "" && rec.Bundle != id {
			return nil, errors.ForBundle(errors.ErrCodeInvalidRequest, id, "",
				fmt.Sprintf("record %s is for bundle %s", source, rec.Bundle), nil)
		}
		fp, err := rec.ToFingerprint()
		if err != nil {
			return nil, errors.ForBundle(errors.ErrCodeInvalidRequest, id, "", "invalid record", err)
		}
		slog.Debug("verifying against record", "source", source, "recorded", rec.Timestamp())
		return fp, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "--expected or --record is required")
	}
}
