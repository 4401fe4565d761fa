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

package releasenotes

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://cloud.google.com/kubernetes-engine/docs/release-notes"

func loadFixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/release-notes.html")
	require.NoError(t, err)
	return string(b)
}

func TestExtract_PageOrder(t *testing.T) {
	ex, err := Extract(loadFixture(t), pageURL, "")
	require.NoError(t, err)

	want := []string{"2024-R12", "2024-R11", "2024-R10", "2024-R09"}
	if diff := cmp.Diff(want, ex.PageIDs); diff != "" {
		t.Errorf("PageIDs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, -1, ex.CheckpointIndex)
}

func TestExtract_OnlyReleasesAheadOfCheckpoint(t *testing.T) {
	ex, err := Extract(loadFixture(t), pageURL, "2024-R10")
	require.NoError(t, err)

	assert.Equal(t, 2, ex.CheckpointIndex)
	if diff := cmp.Diff([]string{"2024-R12", "2024-R11"}, sectionIDs(ex.Sections)); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ex.Skipped())
}

func TestExtract_CheckpointIsNewest(t *testing.T) {
	ex, err := Extract(loadFixture(t), pageURL, "2024-R12")
	require.NoError(t, err)

	assert.Equal(t, 0, ex.CheckpointIndex)
	assert.Empty(t, ex.NewIDs)
	assert.Empty(t, ex.Sections)
}

func TestExtract_CheckpointAbsentTreatsAllAsNew(t *testing.T) {
	for _, cp := range []string{"", "2019-R01"} {
		t.Run("checkpoint="+cp, func(t *testing.T) {
			ex, err := Extract(loadFixture(t), pageURL, cp)
			require.NoError(t, err)

			assert.Equal(t, -1, ex.CheckpointIndex)
			assert.Equal(t, ex.PageIDs, ex.NewIDs)
			if diff := cmp.Diff([]string{"2024-R12", "2024-R11", "2024-R10"}, sectionIDs(ex.Sections)); diff != "" {
				t.Errorf("sections mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []string{"2024-R09"}, ex.Skipped())
		})
	}
}

func TestExtract_StablePanelFromTabControl(t *testing.T) {
	ex, err := Extract(loadFixture(t), pageURL, "2024-R10")
	require.NoError(t, err)
	require.Len(t, ex.Sections, 2)

	r12 := ex.Sections[0]
	assert.True(t, strings.HasPrefix(r12.StablePanelHTML, `<section role="tabpanel" id="tabpanel-r12-stable">`), r12.StablePanelHTML)
	assert.Contains(t, r12.StablePanelHTML, "1.32.7-gke.1079000")
	assert.NotContains(t, r12.StablePanelHTML, "1.34.0")
	assert.Equal(t, pageURL+"#September_22_2025_changes", r12.Source)
}

func TestExtract_StablePanelConventionalID(t *testing.T) {
	ex, err := Extract(loadFixture(t), pageURL, "2024-R10")
	require.NoError(t, err)
	require.Len(t, ex.Sections, 2)

	r11 := ex.Sections[1]
	assert.Contains(t, r11.StablePanelHTML, `id="tabpanel-stable-channel"`)
	assert.Contains(t, r11.StablePanelHTML, "1.31.11-gke.1002000")
	assert.Equal(t, pageURL+"#September_15_2025", r11.Source)
}

func TestExtract_FallbackScanWithoutTabs(t *testing.T) {
	ex, err := Extract(loadFixture(t), pageURL, "")
	require.NoError(t, err)
	require.Len(t, ex.Sections, 3)

	r10 := ex.Sections[2]
	assert.Equal(t, "<li>Stable channel: 1.30.14-gke.1000</li>", r10.StablePanelHTML)
	// nearest preceding h2 has no id
	assert.Equal(t, pageURL, r10.Source)
}

func TestExtract_DuplicateIDsKept(t *testing.T) {
	markup := `<html><body>
<h2 id="a">A</h2>
<h4 id="x-version-updates" data-text="(2025-R02) Version updates">(2025-R02) Version updates</h4>
<p>Stable: 1.33.1</p>
<h4 id="y-version-updates" data-text="(2025-R02) Version updates">(2025-R02) Version updates</h4>
<p>Stable: 1.33.2</p>
<h4 id="z-version-updates" data-text="(2025-R01) Version updates">(2025-R01) Version updates</h4>
<p>Stable: 1.33.0</p>
</body></html>`

	ex, err := Extract(markup, pageURL, "2025-R01")
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-R02", "2025-R02"}, sectionIDs(ex.Sections))
	assert.Equal(t, "<p>Stable: 1.33.1</p>", ex.Sections[0].StablePanelHTML)
	assert.Equal(t, "<p>Stable: 1.33.2</p>", ex.Sections[1].StablePanelHTML)
	assert.Equal(t, pageURL+"#a", ex.Sections[1].Source)
}

func TestExtract_HeaderLabel(t *testing.T) {
	tests := []struct {
		name     string
		dataText string
		want     []string
	}{
		{"attribute wins", ` data-text="(2025-R05) Version updates"`, []string{"2025-R05"}},
		{"empty attribute falls back to text", ` data-text=""`, []string{"2025-R04"}},
		{"missing attribute falls back to text", ``, []string{"2025-R04"}},
		{"whitespace attribute excludes heading", ` data-text="   "`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup := `<html><body><h2 id="May_1_2025">May 1, 2025</h2>` +
				`<h4 id="2025-R04-version-updates"` + tt.dataText + `>(2025-R04) Version updates</h4>` +
				`<p>Stable channel: 1.31.1-gke.1</p></body></html>`

			ex, err := Extract(markup, pageURL, "")
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, ex.PageIDs); diff != "" {
				t.Errorf("PageIDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_EmptyPage(t *testing.T) {
	ex, err := Extract("", pageURL, "2025-R01")
	require.NoError(t, err)

	assert.Empty(t, ex.PageIDs)
	assert.Empty(t, ex.Sections)
}

func TestSkipped_CountsDuplicates(t *testing.T) {
	ex := &Extraction{
		NewIDs:   []string{"2025-R02", "2025-R02", "2025-R01"},
		Sections: []Section{{RID: "2025-R02"}},
	}
	assert.Equal(t, []string{"2025-R02", "2025-R01"}, ex.Skipped())
}
