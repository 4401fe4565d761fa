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

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chkk-io/gke-release-sync/pkg/checkpoint"
	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/entry"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/fetcher"
	"github.com/chkk-io/gke-release-sync/pkg/llm"
	"github.com/chkk-io/gke-release-sync/pkg/merger"
	"github.com/chkk-io/gke-release-sync/pkg/releasenotes"
)

// Status is the outcome of a run.
type Status string

const (
	// StatusNoChange means nothing new was found or nothing needed writing.
	StatusNoChange Status = "no_change"
	// StatusChanged means the artifact was rewritten (or would be, in dry run).
	StatusChanged Status = "changed"
	// StatusFailed means the run stopped on a fatal error.
	StatusFailed Status = "error"
)

// Result describes a finished run. It is returned even when Run fails so the
// caller can still report what was observed.
type Result struct {
	RunID      string
	Status     Status
	Checkpoint string
	Extraction *releasenotes.Extraction
	Entries    []entry.Entry
	Strategy   string
	DryRun     bool
	Started    time.Time
	Finished   time.Time
	Duration   time.Duration
}

// Scan is the checkpoint and page state before any model call.
type Scan struct {
	Checkpoint string
	Extraction *releasenotes.Extraction
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFetcher replaces the release notes fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// WithCompleter replaces the model client.
func WithCompleter(c llm.Completer) Option {
	return func(p *Pipeline) {
		p.completer = c
	}
}

// WithMergerOptions passes options to the merger.
func WithMergerOptions(opts ...merger.Option) Option {
	return func(p *Pipeline) {
		p.mergerOpts = append(p.mergerOpts, opts...)
	}
}

// WithMetrics records the run into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs checkpoint, fetch, extract, model request, decode and merge
// strictly in sequence, stopping early when there is nothing to do.
type Pipeline struct {
	cfg        *config.Config
	fetcher    fetcher.Fetcher
	completer  llm.Completer
	mergerOpts []merger.Option
	metrics    *Metrics
	now        func() time.Time
	runID      string
	log        *slog.Logger
}

// New builds a Pipeline from cfg. The model client is created on the first
// Run so commands that never reach the model need no credential.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "configuration is required")
	}

	p := &Pipeline{
		cfg:   cfg,
		now:   time.Now,
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = slog.Default().With("run", p.runID)

	if p.fetcher == nil {
		var fopts []fetcher.Option
		if p.metrics != nil {
			fopts = append(fopts, fetcher.WithAttemptObserver(p.metrics.observeFetch))
		}
		f, err := fetcher.New(cfg, fopts...)
		if err != nil {
			return nil, err
		}
		p.fetcher = f
	}
	return p, nil
}

// RunID identifies this pipeline's run in logs and reports.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Scan reads the checkpoint, fetches the page and extracts the sections
// ahead of it.
func (p *Pipeline) Scan(ctx context.Context) (*Scan, error) {
	cp, found, err := checkpoint.Read(p.cfg.ArtifactPath)
	if err != nil {
		return nil, err
	}
	if found {
		p.log.Info("checkpoint found", "checkpoint", cp, "artifact", p.cfg.ArtifactPath)
	} else {
		p.log.Info("no checkpoint in artifact, treating every release as new", "artifact", p.cfg.ArtifactPath)
	}

	markup, err := p.fetcher.Fetch(ctx, p.cfg.ReleaseNotesURL)
	if err != nil {
		return nil, err
	}

	ex, err := releasenotes.Extract(markup, p.cfg.ReleaseNotesURL, cp)
	if err != nil {
		return nil, err
	}
	if found && ex.CheckpointIndex < 0 && len(ex.PageIDs) > 0 {
		p.log.Warn("checkpoint not on page, all listed releases will be submitted",
			"checkpoint", cp, "oldest_on_page", ex.PageIDs[len(ex.PageIDs)-1])
	}
	if skipped := ex.Skipped(); len(skipped) > 0 {
		p.log.Info("releases without stable-channel content skipped", "ids", skipped)
	}
	return &Scan{Checkpoint: cp, Extraction: ex}, nil
}

// Run executes the whole sync. The returned Result is never nil.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:   p.runID,
		Status:  StatusNoChange,
		DryRun:  p.cfg.DryRun,
		Started: p.now(),
	}

	err := p.run(ctx, res)
	if err != nil {
		res.Status = StatusFailed
		p.log.Error("sync failed", "code", errors.CodeOf(err), "error", err)
	}
	res.Finished = p.now()
	res.Duration = res.Finished.Sub(res.Started)
	if p.metrics != nil {
		p.metrics.observeRun(res, err)
	}
	p.log.Info("sync finished", "status", res.Status, "duration", res.Duration.String())
	return res, err
}

func (p *Pipeline) run(ctx context.Context, res *Result) error {
	if err := p.cfg.Validate(true); err != nil {
		return err
	}
	if p.completer == nil {
		var opts []llm.Option
		if p.metrics != nil {
			opts = append(opts, llm.WithAttemptObserver(p.metrics.observeModel))
		}
		c, err := llm.NewClient(p.cfg, opts...)
		if err != nil {
			return err
		}
		p.completer = c
	}

	scan, err := p.Scan(ctx)
	if err != nil {
		return err
	}
	res.Checkpoint = scan.Checkpoint
	res.Extraction = scan.Extraction

	sections := scan.Extraction.Sections
	if len(sections) == 0 {
		p.log.Info("no new releases above checkpoint", "checkpoint", scan.Checkpoint)
		return nil
	}

	template, err := llm.LoadTemplate(p.cfg.PromptPath)
	if err != nil {
		return err
	}
	prompt, err := llm.BuildPrompt(template, llm.NewPayload(scan.Checkpoint, sections))
	if err != nil {
		return err
	}

	p.log.Info("requesting extraction", "model", p.cfg.Model, "sections", len(sections), "prompt_bytes", len(prompt))
	completion, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	res.Strategy = completion.Strategy

	entries, err := entry.Decode(completion.Text)
	if err != nil {
		p.log.Error("model output could not be decoded", "raw", completion.Text)
		return err
	}
	res.Entries = entries
	p.log.Info("entries decoded", "count", len(entries), "strategy", completion.Strategy)
	if len(entries) == 0 {
		p.log.Info("no entries to add")
		return nil
	}

	changed, err := merger.New(p.cfg, p.mergerOpts...).Merge(ctx, entries)
	if err != nil {
		return err
	}
	if changed {
		res.Status = StatusChanged
	}
	return nil
}
