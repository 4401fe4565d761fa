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

package merger

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	utilexec "k8s.io/utils/exec"

	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/defaults"
	"github.com/chkk-io/gke-release-sync/pkg/entry"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

// Option configures a Merger.
type Option func(*Merger)

// WithExec overrides the command runner used for the formatter.
func WithExec(e utilexec.Interface) Option {
	return func(m *Merger) {
		if e != nil {
			m.exec = e
		}
	}
}

// WithFormatTimeout bounds the formatter run.
func WithFormatTimeout(d time.Duration) Option {
	return func(m *Merger) {
		if d > 0 {
			m.formatTimeout = d
		}
	}
}

// Merger splices new entries into the data file and runs the formatter.
type Merger struct {
	path          string
	anchor        *regexp.Regexp
	projectRef    string
	formatDir     string
	formatCommand []string
	formatTimeout time.Duration
	dryRun        bool
	exec          utilexec.Interface
}

// New creates a Merger for the artifact described by cfg.
func New(cfg *config.Config, opts ...Option) *Merger {
	m := &Merger{
		path:          cfg.ArtifactPath,
		anchor:        AnchorPattern(cfg.CollectionName, cfg.ElementType),
		projectRef:    cfg.ProjectRef,
		formatDir:     cfg.FormatDir,
		formatCommand: cfg.FormatCommand,
		formatTimeout: defaults.FormatTimeout,
		dryRun:        cfg.DryRun,
		exec:          utilexec.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge inserts entries into the artifact and reports whether its text
// changed. The file is written once with its full new content and then
// formatted; formatter failures are logged and ignored. In dry-run mode the
// change is computed but nothing is written or formatted.
func (m *Merger) Merge(ctx context.Context, entries []entry.Entry) (bool, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeNotFound, "stat artifact", err,
			map[string]any{"path": m.path})
	}
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeInternal, "read artifact", err,
			map[string]any{"path": m.path})
	}

	content := string(raw)
	merged, err := Splice(content, m.anchor, m.projectRef, entries)
	if err != nil {
		return false, err
	}
	if merged == content {
		slog.Info("artifact unchanged", "path", m.path)
		return false, nil
	}

	if m.dryRun {
		slog.Info("dry run: artifact would change", "path", m.path, "entries", len(entries))
		return true, nil
	}

	if err := os.WriteFile(m.path, []byte(merged), info.Mode().Perm()); err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeInternal, "write artifact", err,
			map[string]any{"path": m.path})
	}
	slog.Info("artifact updated", "path", m.path, "entries", len(entries))

	m.format(ctx)
	return true, nil
}

// format runs the configured formatter in formatDir. Best effort.
func (m *Merger) format(ctx context.Context) {
	if len(m.formatCommand) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, m.formatTimeout)
	defer cancel()

	cmd := m.exec.CommandContext(ctx, m.formatCommand[0], m.formatCommand[1:]...)
	if m.formatDir != "" {
		cmd.SetDir(m.formatDir)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Warn("formatter failed",
			"command", strings.Join(m.formatCommand, " "),
			"dir", m.formatDir,
			"output", strings.TrimSpace(string(out)),
			"error", err)
		return
	}
	slog.Debug("formatter finished", "command", strings.Join(m.formatCommand, " "))
}
