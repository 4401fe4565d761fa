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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chkk-io/gke-release-sync/pkg/checkpoint"
)

func checkpointCmd() *cli.Command {
	return &cli.Command{
		Name:  "checkpoint",
		Usage: "Print the newest release recorded in the data file",
		Description: `Print the release identifier (for example 2025-R37) that a sync would use
as its checkpoint, or "none" when the data file records no release yet.`,
		Flags: []cli.Flag{
			artifactFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			id, found, err := checkpoint.Read(cfg.ArtifactPath)
			if err != nil {
				return err
			}
			if !found {
				id = "none"
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, id)
			return err
		},
	}
}
