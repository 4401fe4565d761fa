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
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/k8s/client"
	"github.com/chkk-io/gke-release-sync/pkg/logging"
	"github.com/chkk-io/gke-release-sync/pkg/pipeline"
	"github.com/chkk-io/gke-release-sync/pkg/serializer"
)

const (
	name           = "gkesync"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Flags shared by several commands. Each call returns a fresh flag since
// flags keep parsed state.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig used for cm:// outputs (defaults to KUBECONFIG or ~/.kube/config)",
	}
}

func artifactFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "artifact",
		Aliases: []string{"a"},
		Usage:   "Path to the Go data file holding the release collection",
	}
}

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "url",
		Usage: "Release notes page URL",
	}
}

func fetchModeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "fetch-mode",
		Usage: "How the page is retrieved: http or browser",
	}
}

// Execute runs the CLI and exits the process with the resolved status code.
// It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().Run(ctx, os.Args)
	os.Exit(exitStatus(err))
}

func newRootCmd(extra ...pipeline.Option) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Sync GKE release notes into the project release catalog",
		Version:               version,
		EnableShellCompletion: true,
		Description: fmt.Sprintf(`gkesync keeps a Go data file of GKE releases in step with the published
release notes. It finds the newest release already recorded, extracts the
stable-channel content of every newer release from the notes page, asks a
text-generation backend to turn that content into structured entries and
splices them at the top of the collection.

Version: %s
Commit:  %s
Built:   %s`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (.yaml, .yml or .toml)",
				Sources: cli.EnvVars("GKESYNC_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
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
		// exit codes are resolved by Execute
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			syncCmd(extra...),
			checkpointCmd(),
			sectionsCmd(extra...),
		},
	}
}

// exitStatus maps the error returned by the root command to a process exit
// code. Exit coders carry their own code; anything else is a fatal error.
func exitStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec cli.ExitCoder
	if stderrors.As(err, &ec) {
		return ec.ExitCode()
	}
	fmt.Fprintln(os.Stderr, err)
	return ExitError
}

// loadConfig resolves the run configuration: defaults, then the optional
// config file, then the environment, then explicitly set flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if path := cmd.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)

	overrides := map[string]*string{
		"artifact": &cfg.ArtifactPath,
		"url":      &cfg.ReleaseNotesURL,
		"prompt":   &cfg.PromptPath,
		"model":    &cfg.Model,
	}
	for flag, dst := range overrides {
		if cmd.IsSet(flag) {
			if v := strings.TrimSpace(cmd.String(flag)); v != "" {
				*dst = v
			}
		}
	}
	if cmd.IsSet("fetch-mode") {
		cfg.FetchMode = config.FetchMode(strings.ToLower(strings.TrimSpace(cmd.String("fetch-mode"))))
	}
	if cmd.IsSet("dry-run") {
		cfg.DryRun = cmd.Bool("dry-run")
	}
	return cfg, nil
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(cmd.String("format"))))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", cmd.String("format"))
	}
	return f, nil
}

func kubeClientFunc(kubeconfig string) serializer.ClientFunc {
	return func() (client.Interface, error) {
		c, _, err := client.BuildKubeClient(kubeconfig)
		return c, err
	}
}
