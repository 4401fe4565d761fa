// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/chkk-io/gke-release-sync/pkg/defaults"
	"github.com/chkk-io/gke-release-sync/pkg/pipeline"
	"github.com/chkk-io/gke-release-sync/pkg/serializer"
)

// Process exit codes. A changed artifact is signalled separately from
// success so a calling job can open a pull request only when needed.
const (
	ExitOK      = 0
	ExitError   = 2
	ExitChanged = 10
)

// ExitCode maps a sync outcome to the process exit code.
func ExitCode(res *pipeline.Result, err error) int {
	switch {
	case err != nil:
		return ExitError
	case res != nil && res.Status == pipeline.StatusChanged:
		return ExitChanged
	default:
		return ExitOK
	}
}

func syncCmd(extra ...pipeline.Option) *cli.Command {
	return &cli.Command{
		Name:                  "sync",
		EnableShellCompletion: true,
		Usage:                 "Add newly published GKE releases to the data file",
		Description: `Run the full sync: read the checkpoint from the data file, fetch the
release notes, extract the stable-channel content of every newer release,
request structured entries from the model backend and splice them at the
top of the collection.

The model credential is read from OPENAI_API_KEY. OPENAI_MODEL and
OPENAI_BASE_URL override the model name and endpoint.

# Exit Codes

  0   nothing new, or nothing to write
  2   fatal error
  10  data file modified (or would be, with --dry-run)

# Examples

Sync in place and record the run in a ConfigMap:
  gkesync sync --report cm://release-sync/last-run --format json

Preview without writing:
  gkesync sync --dry-run --report - --format table`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Render the merge and report the outcome without writing the data file",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a run report to a file, - for stdout, or cm://namespace/name",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus text-format metrics to this path after the run",
			},
			&cli.StringFlag{
				Name:  "prompt",
				Usage: "Path to the prompt template",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model name (overrides OPENAI_MODEL)",
			},
			artifactFlag(),
			urlFlag(),
			fetchModeFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			metrics := pipeline.NewMetrics()
			p, err := pipeline.New(cfg, append([]pipeline.Option{pipeline.WithMetrics(metrics)}, extra...)...)
			if err != nil {
				return err
			}

			res, runErr := p.Run(ctx)

			if target := cmd.String("report"); target != "" {
				report := pipeline.NewSyncReport(res, runErr, version)
				if err := writeDocument(ctx, format, target, cmd.String("kubeconfig"), report); err != nil {
					slog.Warn("failed to write run report", "target", target, "error", err)
				}
			}
			if path := cmd.String("metrics-file"); path != "" {
				if err := metrics.WriteTextfile(path); err != nil {
					slog.Warn("failed to write metrics", "path", path, "error", err)
				}
			}

			switch code := ExitCode(res, runErr); code {
			case ExitOK:
				return nil
			case ExitChanged:
				return cli.Exit("", code)
			default:
				return cli.Exit(runErr, code)
			}
		},
	}
}

// writeDocument serialises doc to target. ConfigMap writes are bounded by
// their own timeout so a slow API server cannot hold the job open.
func writeDocument(ctx context.Context, format serializer.Format, target, kubeconfig string, doc any) error {
	out, err := serializer.NewOutput(format, target, serializer.WithClientFunc(kubeClientFunc(kubeconfig)))
	if err != nil {
		return err
	}
	if c, ok := out.(serializer.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				slog.Warn("failed to close output", "target", target, "error", cerr)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()
	return out.Serialize(ctx, doc)
}
