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
	"time"

	"github.com/urfave/cli/v3"

	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/identifier"
	"github.com/themeradar/anchor/pkg/record"
	"github.com/themeradar/anchor/pkg/rollup"
)

// now is replaced in tests.
var now = time.Now

func rollupCmd() *cli.Command {
	return &cli.Command{
		Name:                  "rollup",
		EnableShellCompletion: true,
		Usage:                 "Combine recorded daily roots into a weekly root",
		Description: `Reads the BUNDLE_ROOT_SHA256 line recorded in each daily document of the
period, hashes the available daily roots in chronological order and writes
logs/weekly_<label>.md. Prints exactly one line on stdout:

  WEEKLY_ROOT_SHA256: <hex>

Days without a document or without a recorded root are listed as missing.

# Examples

  anchor rollup --week 2025-W05
  anchor rollup --this-week
  anchor rollup --last7 --dry-run`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "week",
				Usage: "ISO week to roll up (YYYY-Www)",
			},
			&cli.BoolFlag{
				Name:  "this-week",
				Usage: "Roll up the current ISO week",
			},
			&cli.BoolFlag{
				Name:  "last7",
				Usage: "Roll up the seven days ending today",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compute and print the weekly root without writing the weekly document",
			},
			&cli.StringFlag{
				Name:    "record",
				Aliases: []string{"r"},
				Usage:   "Also write the rollup record to a file or ConfigMap (cm://namespace/name)",
			},
			recordFormatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			period, err := rollupPeriod(cmd)
			if err != nil {
				return err
			}
			e, err := newEngine(ctx, cmd)
			if err != nil {
				return err
			}

			roller := rollup.New(e.Resolver(), slog.Default())
			ru, err := roller.Compute(ctx, period)
			if err != nil {
				return err
			}
			for _, m := range ru.Missing {
				slog.Warn("day missing from rollup", "label", ru.Label, "day", m.Day, "reason", m.Reason)
			}

			if !cmd.Bool("dry-run") {
				if _, err := roller.Write(ru); err != nil {
					return err
				}
			}
			if dest := cmd.String("record"); dest != "" {
				if err := writeRecord(ctx, dest, cmd.String("format"), record.NewWeeklyRollup(ru, version)); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(stdout(cmd), ru.Line())
			return err
		},
	}
}

func rollupPeriod(cmd *cli.Command) (rollup.Period, error) {
	week := cmd.String("week")
	set := 0
	for _, selected := range []bool{week != "", cmd.Bool("this-week"), cmd.Bool("last7")} {
		if selected {
			set++
		}
	}
	if set != 1 {
		return rollup.Period{}, errors.New(errors.ErrCodeInvalidRequest,
			"exactly one of --week, --this-week or --last7 is required")
	}

	switch {
	case cmd.Bool("this-week"):
		return rollup.ThisWeek(now()), nil
	case cmd.Bool("last7"):
		return rollup.Last7(now()), nil
	default:
		id, err := identifier.ParseKind(week, identifier.KindWeekly)
		if err != nil {
			return rollup.Period{}, err
		}
		return rollup.Week(id)
	}
}
