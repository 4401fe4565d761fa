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
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/entry"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

const artifact = `package project

import "github.com/chkk-io/schema/model"

var GKEProjectReleases = []model.ProjectRelease{
	{
		Project: GKE.ID,
		Version: "2024-R10",
		RelatedProjectReleases: []string{
			"kube@1.30.12",
		},
	},
}
`

func writeArtifact(t *testing.T, content string) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gke.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))

	cfg := config.NewConfig()
	cfg.ArtifactPath = path
	cfg.FormatDir = dir
	return path, cfg
}

func fakeFormatter(out []byte, err error) (*testingexec.FakeExec, *testingexec.FakeCmd) {
	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return out, nil, err },
		},
	}
	fexec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(fcmd, cmd, args...)
			},
		},
	}
	return fexec, fcmd
}

var sample = []entry.Entry{
	{
		Version:                "2024-R12",
		RelatedProjectReleases: []string{"kube@1.33.3", "kube@1.32.7", "kube@1.32.7"},
		Source:                 "https://example.com/notes#September_22_2025",
	},
	{
		Version:                "2024-R11",
		RelatedProjectReleases: []string{"kube@1.31.11"},
		Source:                 "https://example.com/notes#September_15_2025",
	},
}

func TestMerge_InsertsAfterAnchor(t *testing.T) {
	path, cfg := writeArtifact(t, artifact)
	fexec, fcmd := fakeFormatter(nil, nil)

	changed, err := New(cfg, WithExec(fexec)).Merge(context.Background(), sample)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `package project

import "github.com/chkk-io/schema/model"

var GKEProjectReleases = []model.ProjectRelease{
	{
		Project: GKE.ID,
		Version: "2024-R12",
		RelatedProjectReleases: []string{
			"kube@1.32.7",
			"kube@1.33.3",
		},
	},
	// source: https://example.com/notes#September_22_2025
	{
		Project: GKE.ID,
		Version: "2024-R11",
		RelatedProjectReleases: []string{
			"kube@1.31.11",
		},
	},
	// source: https://example.com/notes#September_15_2025
	{
		Project: GKE.ID,
		Version: "2024-R10",
		RelatedProjectReleases: []string{
			"kube@1.30.12",
		},
	},
}
`
	assert.Equal(t, want, string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	assert.Equal(t, 1, fexec.CommandCalls)
	assert.Equal(t, []string{"gofmt", "-s", "-w", "."}, fcmd.Argv)
	assert.Equal(t, []string{cfg.FormatDir}, fcmd.Dirs)
}

func TestMerge_ZeroEntriesNeverWrites(t *testing.T) {
	path, cfg := writeArtifact(t, artifact)
	fexec := &testingexec.FakeExec{}

	changed, err := New(cfg, WithExec(fexec)).Merge(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, fexec.CommandCalls)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact, string(got))
}

func TestMerge_DryRun(t *testing.T) {
	path, cfg := writeArtifact(t, artifact)
	cfg.DryRun = true
	fexec := &testingexec.FakeExec{}

	changed, err := New(cfg, WithExec(fexec)).Merge(context.Background(), sample)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, fexec.CommandCalls)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact, string(got))
}

func TestMerge_FormatterFailureIsNotFatal(t *testing.T) {
	_, cfg := writeArtifact(t, artifact)
	fexec, _ := fakeFormatter([]byte("gofmt: not found"), &testingexec.FakeExitError{Status: 127})

	changed, err := New(cfg, WithExec(fexec)).Merge(context.Background(), sample[:1])
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, fexec.CommandCalls)
}

func TestMerge_NoFormatterConfigured(t *testing.T) {
	_, cfg := writeArtifact(t, artifact)
	cfg.FormatCommand = nil
	fexec := &testingexec.FakeExec{}

	changed, err := New(cfg, WithExec(fexec)).Merge(context.Background(), sample[:1])
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, fexec.CommandCalls)
}

func TestMerge_AnchorMissing(t *testing.T) {
	content := "package project\n\nvar Other = []string{}\n"
	path, cfg := writeArtifact(t, content)

	changed, err := New(cfg, WithExec(&testingexec.FakeExec{})).Merge(context.Background(), sample)
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, errors.ErrCodeStructure, errors.CodeOf(err))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestMerge_ArtifactMissing(t *testing.T) {
	cfg := config.NewConfig()
	cfg.ArtifactPath = filepath.Join(t.TempDir(), "absent.go")

	_, err := New(cfg).Merge(context.Background(), sample)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestAnchorPattern(t *testing.T) {
	re := AnchorPattern("GKEProjectReleases", "ProjectRelease")

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "qualified", text: "var GKEProjectReleases = []model.ProjectRelease{", want: true},
		{name: "bare", text: "var GKEProjectReleases = []ProjectRelease{", want: true},
		{name: "no var", text: "GKEProjectReleases = []ProjectRelease {", want: true},
		{name: "spacing", text: "var GKEProjectReleases  =  [] model.ProjectRelease  {", want: true},
		{name: "other collection", text: "var EKSProjectReleases = []model.ProjectRelease{", want: false},
		{name: "other element", text: "var GKEProjectReleases = []model.Release{", want: false},
		{name: "pointer elements", text: "var GKEProjectReleases = []*model.ProjectRelease{", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, re.MatchString(tt.text))
		})
	}
}

func TestSortReleases(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "numeric not lexicographic",
			in:   []string{"kube@1.9.0", "kube@1.10.0", "kube@1.2.3"},
			want: []string{"kube@1.2.3", "kube@1.9.0", "kube@1.10.0"},
		},
		{
			name: "duplicates removed",
			in:   []string{"kube@1.30.14", "kube@1.30.14"},
			want: []string{"kube@1.30.14"},
		},
		{
			name: "unversioned sorts first",
			in:   []string{"kube@1.30.14", "kube@latest"},
			want: []string{"kube@latest", "kube@1.30.14"},
		},
		{
			name: "suffix ignored",
			in:   []string{"kube@1.31.1-gke.1146000", "kube@1.30.14"},
			want: []string{"kube@1.30.14", "kube@1.31.1-gke.1146000"},
		},
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortReleases(tt.in))
		})
	}
}

func TestRender_DuplicateYieldsOneLine(t *testing.T) {
	out := Render("GKE.ID", entry.Entry{
		Version:                "2024-R12",
		RelatedProjectReleases: []string{"kube@1.30.14", "kube@1.30.14"},
		Source:                 "https://example.com/notes",
	})
	assert.Equal(t, 1, strings.Count(out, `"kube@1.30.14",`))
}

func TestRender_SourceStaysOnOneLine(t *testing.T) {
	out := Render("GKE.ID", entry.Entry{Version: "2024-R12", Source: "https://example.com/a\nhttps://example.com/b"})
	assert.True(t, strings.HasSuffix(out, "\t// source: https://example.com/a https://example.com/b\n"))
}

func TestSplice_ProducesValidGo(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty inline", "package project\n\nvar GKEProjectReleases = []ProjectRelease{}\n"},
		{"empty multi-line", "package project\n\nvar GKEProjectReleases = []ProjectRelease{\n}\n"},
		{"trailing comment", "package project\n\nvar GKEProjectReleases = []ProjectRelease{ // newest first\n}\n"},
		{"populated", artifact},
	}
	anchor := AnchorPattern(config.DefaultCollectionName, config.DefaultElementType)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Splice(tt.content, anchor, "GKE.ID", sample)
			require.NoError(t, err)

			_, err = parser.ParseFile(token.NewFileSet(), "gke.go", out, parser.ParseComments)
			require.NoError(t, err, out)
			assert.Equal(t, len(sample), strings.Count(out, "// source: "))
			assert.True(t, strings.HasSuffix(out, "}\n"))
		})
	}
}

func TestSplice_EmptyCollectionLayout(t *testing.T) {
	anchor := AnchorPattern(config.DefaultCollectionName, config.DefaultElementType)
	out, err := Splice("var GKEProjectReleases = []ProjectRelease{}\n", anchor, "GKE.ID", sample[1:])
	require.NoError(t, err)

	want := `var GKEProjectReleases = []ProjectRelease{
	{
		Project: GKE.ID,
		Version: "2024-R11",
		RelatedProjectReleases: []string{
			"kube@1.31.11",
		},
	},
	// source: https://example.com/notes#September_15_2025
}
`
	assert.Equal(t, want, out)
}
