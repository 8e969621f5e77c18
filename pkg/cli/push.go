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
	"time"

	"github.com/urfave/cli/v3"

	"github.com/themeradar/anchor/pkg/defaults"
	"github.com/themeradar/anchor/pkg/errors"
	"github.com/themeradar/anchor/pkg/header"
	"github.com/themeradar/anchor/pkg/oci"
	"github.com/themeradar/anchor/pkg/record"
	"github.com/themeradar/anchor/pkg/serializer"
)

// pushCmdOptions holds parsed options for the push command.
type pushCmdOptions struct {
	reference   *oci.Reference
	plainHTTP   bool
	insecureTLS bool
	created     string
}

func parsePushCmdOptions(cmd *cli.Command) (*pushCmdOptions, error) {
	opts := &pushCmdOptions{
		plainHTTP:   cmd.Bool("plain-http"),
		insecureTLS: cmd.Bool("insecure-tls"),
	}

	target := cmd.String("reference")
	registry, repository := cmd.String("registry"), cmd.String("repository")
	switch {
	case target != "" && (registry != "" || repository != ""):
		return nil, errors.New(errors.ErrCodeInvalidRequest, "use either --reference or --registry/--repository")
	case target == "":
		if registry == "" || repository == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "--registry and --repository are required without --reference")
		}
		target = registry + "/" + repository
		if tag := cmd.String("tag"); tag != "" {
			target += ":" + tag
		}
	}

	ref, err := oci.ParseReference(target)
	if err != nil {
		return nil, err
	}
	opts.reference = ref

	if cmd.Bool("reproducible") {
		opts.created = time.Unix(0, 0).UTC().Format(time.RFC3339)
	}
	return opts, nil
}

func pushCmd() *cli.Command {
	return &cli.Command{
		Name:                  "push",
		EnableShellCompletion: true,
		Usage:                 "Publish a bundle and its anchor record as an OCI artifact",
		ArgsUsage:             "<YYYY-MM-DD|YYYY-Www>",
		Description: `Fingerprints the bundle and pushes exactly the hashed files, plus the
anchor record, to an OCI registry. The fingerprint is stored in the
io.themeradar.anchor.fingerprint manifest annotation. Credentials come from
the Docker configuration (~/.docker/config.json). The tag defaults to the
bundle identifier. Prints "<reference>@<digest>" on stdout.

# Examples

  anchor push 2025-06-01 --registry ghcr.io --repository themeradar/anchors
  anchor push 2025-W05 --reference oci://localhost:5000/anchors:2025-W05 --plain-http`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "reference",
				Usage: "Full destination, e.g. oci://ghcr.io/themeradar/anchors:2025-06-01",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "OCI registry host (e.g., ghcr.io, localhost:5000)",
			},
			&cli.StringFlag{
				Name:  "repository",
				Usage: "OCI repository path (e.g., themeradar/anchors)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "OCI tag (default: the bundle identifier)",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the OCI registry",
			},
			&cli.BoolFlag{
				Name:  "reproducible",
				Usage: "Pin the manifest creation time so repeated pushes yield the same digest",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := bundleArg(cmd)
			if err != nil {
				return err
			}
			opts, err := parsePushCmdOptions(cmd)
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
			rec := record.FromResult(res, version)
			if opts.created != "" {
				rec.Metadata[header.KeyTimestamp] = opts.created
			}
			data, err := serializer.Marshal(serializer.FormatYAML, rec)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, "serialize anchor record", err)
			}

			ctx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
			defer cancel()

			out, err := oci.Push(ctx, oci.PushOptions{
				Manifest:    res.Manifest,
				Record:      data,
				Fingerprint: res.Fingerprint.String(),
				Reference:   opts.reference,
				PlainHTTP:   opts.plainHTTP,
				InsecureTLS: opts.insecureTLS,
				Created:     opts.created,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(stdout(cmd), "%s@%s\n", out.Reference, out.Digest)
			return err
		},
	}
}
