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

	"github.com/urfave/cli/v3"

	"github.com/chkk-io/gke-release-sync/pkg/pipeline"
)

func sectionsCmd(extra ...pipeline.Option) *cli.Command {
	return &cli.Command{
		Name:                  "sections",
		EnableShellCompletion: true,
		Usage:                 "List the releases a sync would submit, without calling the model",
		Description: `Fetch the release notes and list every release newer than the checkpoint
together with its provenance URL and the size of its stable-channel markup.
Releases whose stable content could not be located are listed separately.

No credential is needed; the model backend is never contacted.

# Examples

  gkesync sections --format table
  gkesync sections --fetch-mode browser --output sections.json --format json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output destination: file path, - for stdout, or cm://namespace/name",
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
			if err := cfg.Validate(false); err != nil {
				return err
			}

			p, err := pipeline.New(cfg, extra...)
			if err != nil {
				return err
			}
			scan, err := p.Scan(ctx)
			if err != nil {
				return err
			}
			return writeDocument(ctx, format, cmd.String("output"), cmd.String("kubeconfig"),
				pipeline.NewSectionList(scan, version))
		},
	}
}
