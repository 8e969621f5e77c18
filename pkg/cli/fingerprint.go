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

	"github.com/urfave/cli/v3"

	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/record"
)

var recordFormatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"t"},
	Usage:   "Record format: json, yaml or table (default: from the destination extension, else yaml)",
}

func fingerprintCmd() *cli.Command {
	return &cli.Command{
		Name:                  "fingerprint",
		Aliases:               []string{"hash"},
		EnableShellCompletion: true,
		Usage:                 "Compute the root fingerprint of one bundle",
		ArgsUsage:             "<YYYY-MM-DD|YYYY-Www>",
		Description: `Resolves the bundle, reads every file once, orders the files canonically
and prints exactly one line on stdout:

  BUNDLE_ROOT_SHA256: <hex>

With --record the full anchor record (per-file leaves included) is also
written to a file or ConfigMap, for later verify runs.

# Examples

  anchor fingerprint 2025-06-01
  anchor --root /srv/radar hash 2025-W05
  anchor fingerprint 2025-06-01 --record anchors/2025-06-01.yaml
  anchor fingerprint 2025-06-01 --record cm://radar/anchor-2025-06-01`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "record",
				Aliases: []string{"r"},
				Usage:   "Also write the anchor record to a file or ConfigMap (cm://namespace/name)",
			},
			recordFormatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := bundleArg(cmd)
			if err != nil {
				return err
			}
			e, err := newEngine(ctx, cmd)
			if err != nil {
				return err
			}

			res, err := e.Run(ctx, id)
			if err != nil {
				return err
			}

			if dest := cmd.String("record"); dest != "" {
				if err := writeRecord(ctx, dest, cmd.String("format"), record.FromResult(res, version)); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(stdout(cmd), res.Fingerprint.Line())
			return err
		},
	}
}

func batchCmd() *cli.Command {
	return &cli.Command{
		Name:                  "batch",
		EnableShellCompletion: true,
		Usage:                 "Fingerprint several bundles in parallel",
		ArgsUsage:             "<id>...",
		Description: `Fingerprints every given bundle independently. Each success prints
"<id> BUNDLE_ROOT_SHA256: <hex>" on stdout in argument order; each failure is
reported on stderr. The exit status is non-zero if any bundle failed.

# Examples

  anchor batch 2025-06-01 2025-06-02 2025-06-03
  anchor --concurrency 8 batch $(ls logs | sed -n 's/^\(....-..-..\)\.md$/\1/p')`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				return errors.New(errors.ErrCodeInvalidRequest, "batch requires at least one bundle identifier")
			}
			if len(ids) > defaults.MaxBatchBundles {
				return errors.New(errors.ErrCodeInvalidRequest,
					fmt.Sprintf("batch accepts at most %d bundles, got %d", defaults.MaxBatchBundles, len(ids)))
			}

			e, err := newEngine(ctx, cmd)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range e.FingerprintAll(ctx, ids) {
				if r.Err != nil {
					failed++
					fmt.Fprintln(stderr(cmd), formatError(r.Err))
					continue
				}
				if _, err := fmt.Fprintf(stdout(cmd), "%s %s\n", r.ID, r.Fingerprint.Line()); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d bundles failed", failed, len(ids))
			}
			return nil
		},
	}
}
