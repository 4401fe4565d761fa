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
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/llm"
	"github.com/chkk-io/gke-release-sync/pkg/merger"
)

const page = `<html><body>
<h2 id="September_22_2025">September 22, 2025</h2>
<h4 id="2024-R12-version-updates" data-text="(2024-R12) Version updates">(2024-R12) Version updates</h4>
<div class="devsite-tabs">
  <a role="tab" aria-controls="r12-stable">Stable</a>
  <section role="tabpanel" id="r12-stable"><ul><li>1.32.7-gke.1079000</li></ul></section>
</div>
<h2 id="September_15_2025">September 15, 2025</h2>
<h4 id="2024-R11-version-updates" data-text="(2024-R11) Version updates">(2024-R11) Version updates</h4>
<p>Stable channel: 1.31.11-gke.1002000</p>
<h2 id="September_8_2025">September 8, 2025</h2>
<h4 id="2024-R10-version-updates" data-text="(2024-R10) Version updates">(2024-R10) Version updates</h4>
<p>Stable channel: 1.30.14-gke.1000</p>
</body></html>`

const artifact = `package project

var GKEProjectReleases = []model.ProjectRelease{
	{
		Project: GKE.ID,
		Version: "2024-R10",
		RelatedProjectReleases: []string{
			"kube@1.30.14",
		},
	},
}
`

const modelAnswer = "```json\n" + `{"entries":[
 {"Version":"2024-R12","RelatedProjectReleases":["kube@1.32.7"],"source":"https://example.com/notes#September_22_2025"},
 {"Version":"2024-R11","RelatedProjectReleases":["kube@1.31.11","kube@1.31.11"],"source":"https://example.com/notes#September_15_2025"}
]}` + "\n```"

type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.body, f.err
}

type fakeCompleter struct {
	text    string
	err     error
	prompts []string
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (*llm.Completion, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Completion{Text: c.text, Strategy: llm.StrategyJSONChat}, nil
}

type fixture struct {
	cfg       *config.Config
	artifact  string
	fetcher   *fakeFetcher
	completer *fakeCompleter
	exec      *testingexec.FakeExec
	metrics   *Metrics
}

func newFixture(t *testing.T, content string) *fixture {
	t.Helper()
	dir := t.TempDir()

	path := filepath.Join(dir, "gke.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	prompt := filepath.Join(dir, "prompt.md")
	require.NoError(t, os.WriteFile(prompt, []byte("Extract stable versions."), 0o644))

	cfg := config.NewConfig()
	cfg.ReleaseNotesURL = "https://example.com/notes"
	cfg.ArtifactPath = path
	cfg.PromptPath = prompt
	cfg.FormatDir = dir
	cfg.APIKey = "sk-test"

	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return nil, nil, nil },
		},
	}
	fexec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd { return testingexec.InitFakeCmd(fcmd, cmd, args...) },
		},
	}

	return &fixture{
		cfg:       cfg,
		artifact:  path,
		fetcher:   &fakeFetcher{body: page},
		completer: &fakeCompleter{text: modelAnswer},
		exec:      fexec,
		metrics:   NewMetrics(),
	}
}

func (f *fixture) pipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(f.cfg,
		WithFetcher(f.fetcher),
		WithCompleter(f.completer),
		WithMergerOptions(merger.WithExec(f.exec)),
		WithMetrics(f.metrics),
	)
	require.NoError(t, err)
	return p
}

func (f *fixture) read(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(f.artifact)
	require.NoError(t, err)
	return string(b)
}

func TestRun_Changed(t *testing.T) {
	f := newFixture(t, artifact)

	res, err := f.pipeline(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, res.Status)
	assert.Equal(t, "2024-R10", res.Checkpoint)
	assert.Equal(t, llm.StrategyJSONChat, res.Strategy)
	require.Len(t, res.Entries, 2)

	require.Len(t, f.completer.prompts, 1)
	prompt := f.completer.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Extract stable versions.\n\nContext:\n"))
	assert.Contains(t, prompt, `"topExisting":"2024-R10"`)
	assert.Contains(t, prompt, `"rid":"2024-R12"`)
	assert.Contains(t, prompt, `"rid":"2024-R11"`)
	assert.NotContains(t, prompt, `"rid":"2024-R10"`)

	got := f.read(t)
	r12 := strings.Index(got, `Version: "2024-R12"`)
	r11 := strings.Index(got, `Version: "2024-R11"`)
	r10 := strings.Index(got, `Version: "2024-R10"`)
	assert.True(t, r12 > 0 && r12 < r11 && r11 < r10, "new entries precede existing ones in input order")
	assert.Equal(t, 1, strings.Count(got, `"kube@1.31.11",`))
	assert.Contains(t, got, "// source: https://example.com/notes#September_22_2025")
	assert.Equal(t, 1, f.exec.CommandCalls)

	assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.sectionsOnPage))
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.sectionsExtracted))
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.entriesMerged))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.runTotal.WithLabelValues("changed", "")))
}

func TestRun_EmptyModelResponse(t *testing.T) {
	f := newFixture(t, artifact)
	f.completer.text = ""

	res, err := f.pipeline(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeModelOutput, errors.CodeOf(err))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, artifact, f.read(t))
	assert.Zero(t, f.exec.CommandCalls)
}

func TestRun_UnparseableModelResponse(t *testing.T) {
	f := newFixture(t, artifact)
	f.completer.text = "Sorry, I cannot help with that."

	_, err := f.pipeline(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeModelOutput, errors.CodeOf(err))
	assert.Equal(t, f.completer.text, errors.ContextOf(err)["raw"])
	assert.Equal(t, artifact, f.read(t))
}

func TestRun_NoNewSections(t *testing.T) {
	content := strings.Replace(artifact, "2024-R10", "2024-R12", 1)
	f := newFixture(t, content)

	res, err := f.pipeline(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoChange, res.Status)
	assert.Empty(t, f.completer.prompts)
	assert.Equal(t, content, f.read(t))
}

func TestRun_NoCheckpointSubmitsEverything(t *testing.T) {
	content := "package project\n\nvar GKEProjectReleases = []model.ProjectRelease{}\n"
	f := newFixture(t, content)

	res, err := f.pipeline(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, res.Status)
	assert.Empty(t, res.Checkpoint)

	require.Len(t, f.completer.prompts, 1)
	assert.Contains(t, f.completer.prompts[0], `"topExisting":null`)
	assert.Contains(t, f.completer.prompts[0], `"rid":"2024-R10"`)

	_, err = parser.ParseFile(token.NewFileSet(), f.artifact, f.read(t), 0)
	require.NoError(t, err)
}

func TestRun_ZeroEntries(t *testing.T) {
	f := newFixture(t, artifact)
	f.completer.text = `{"entries":[]}`

	res, err := f.pipeline(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoChange, res.Status)
	assert.Equal(t, artifact, f.read(t))
}

func TestRun_DryRun(t *testing.T) {
	f := newFixture(t, artifact)
	f.cfg.DryRun = true

	res, err := f.pipeline(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, res.Status)
	assert.True(t, res.DryRun)
	assert.Equal(t, artifact, f.read(t))
	assert.Zero(t, f.exec.CommandCalls)
}

func TestRun_MissingCredentialBeforeNetwork(t *testing.T) {
	f := newFixture(t, artifact)
	f.cfg.APIKey = ""

	p, err := New(f.cfg, WithFetcher(f.fetcher))
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfiguration, errors.CodeOf(err))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Zero(t, f.fetcher.calls)
}

func TestRun_FetchFailure(t *testing.T) {
	f := newFixture(t, artifact)
	f.fetcher.err = errors.New(errors.ErrCodeUnavailable, "fetch release notes")

	res, err := f.pipeline(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, f.completer.prompts)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.runTotal.WithLabelValues("error", "SERVICE_UNAVAILABLE")))
}

func TestRun_MissingPrompt(t *testing.T) {
	f := newFixture(t, artifact)
	f.cfg.PromptPath = filepath.Join(t.TempDir(), "missing.md")

	_, err := f.pipeline(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfiguration, errors.CodeOf(err))
	assert.Empty(t, f.completer.prompts)
}

func TestRun_AnchorMissing(t *testing.T) {
	content := "package project\n\n// Version: \"2024-R10\"\nvar Other = []string{}\n"
	f := newFixture(t, content)

	_, err := f.pipeline(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStructure, errors.CodeOf(err))
	assert.Equal(t, content, f.read(t))
}

func TestRun_ModelFailure(t *testing.T) {
	f := newFixture(t, artifact)
	f.completer.err = errors.New(errors.ErrCodeUnavailable, "model request failed")

	_, err := f.pipeline(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))
	assert.Equal(t, artifact, f.read(t))
}

func TestRun_Duration(t *testing.T) {
	f := newFixture(t, artifact)
	start := time.Date(2025, 9, 22, 6, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(42 * time.Second)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}

	p, err := New(f.cfg,
		WithFetcher(f.fetcher),
		WithCompleter(f.completer),
		WithMergerOptions(merger.WithExec(f.exec)),
		WithClock(clock),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, res.Duration)
	assert.Equal(t, p.RunID(), res.RunID)
}

func TestScan(t *testing.T) {
	f := newFixture(t, artifact)
	f.cfg.APIKey = ""

	p, err := New(f.cfg, WithFetcher(f.fetcher))
	require.NoError(t, err)

	scan, err := p.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-R10", scan.Checkpoint)
	require.Len(t, scan.Extraction.Sections, 2)
	assert.Equal(t, "2024-R12", scan.Extraction.Sections[0].RID)
	assert.Equal(t, "https://example.com/notes#September_22_2025", scan.Extraction.Sections[0].Source)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfiguration, errors.CodeOf(err))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	f := newFixture(t, artifact)
	_, err := f.pipeline(t).Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gkesync.prom")
	require.NoError(t, f.metrics.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "gkesync_sections_extracted 2")
	assert.Contains(t, string(b), `gkesync_runs_total{code="",status="changed"} 1`)
}
