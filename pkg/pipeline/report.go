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
	"strconv"

	"github.com/chkk-io/gke-release-sync/pkg/entry"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/header"
)

// SyncReport is the serialisable summary of one run.
type SyncReport struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID             string        `json:"runId" yaml:"runId"`
	Status            Status        `json:"status" yaml:"status"`
	DryRun            bool          `json:"dryRun" yaml:"dryRun"`
	Checkpoint        string        `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
	PageReleases      int           `json:"pageReleases" yaml:"pageReleases"`
	NewReleases       []string      `json:"newReleases,omitempty" yaml:"newReleases,omitempty"`
	ExtractedReleases []string      `json:"extractedReleases,omitempty" yaml:"extractedReleases,omitempty"`
	SkippedReleases   []string      `json:"skippedReleases,omitempty" yaml:"skippedReleases,omitempty"`
	Strategy          string        `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Entries           []entry.Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
	DurationSeconds   float64       `json:"durationSeconds" yaml:"durationSeconds"`
	ErrorCode         string        `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
	Error             string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewSyncReport summarises res and the run error.
func NewSyncReport(res *Result, runErr error, version string) *SyncReport {
	r := &SyncReport{
		Header: *header.New(
			header.WithKind(header.KindSyncReport),
			header.WithTimestamp(res.Finished),
			header.WithMetadata("run", res.RunID),
		),
		RunID:           res.RunID,
		Status:          res.Status,
		DryRun:          res.DryRun,
		Checkpoint:      res.Checkpoint,
		Strategy:        res.Strategy,
		Entries:         res.Entries,
		DurationSeconds: res.Duration.Seconds(),
	}
	if version != "" {
		r.Metadata["version"] = version
	}
	if ex := res.Extraction; ex != nil {
		r.PageReleases = len(ex.PageIDs)
		r.NewReleases = ex.NewIDs
		for _, s := range ex.Sections {
			r.ExtractedReleases = append(r.ExtractedReleases, s.RID)
		}
		r.SkippedReleases = ex.Skipped()
	}
	if runErr != nil {
		r.ErrorCode = string(errors.CodeOf(runErr))
		r.Error = runErr.Error()
	}
	return r
}

// SectionSummary is one row of a SectionList.
type SectionSummary struct {
	RID         string `json:"rid" yaml:"rid"`
	Source      string `json:"source" yaml:"source"`
	MarkupBytes int    `json:"markupBytes" yaml:"markupBytes"`
}

// SectionList reports the releases a sync would submit, without calling the model.
type SectionList struct {
	header.Header `json:",inline" yaml:",inline"`

	Checkpoint string           `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
	Sections   []SectionSummary `json:"sections" yaml:"sections"`
	Skipped    []string         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewSectionList builds a SectionList from a Scan.
func NewSectionList(scan *Scan, version string) *SectionList {
	l := &SectionList{
		Checkpoint: scan.Checkpoint,
		Sections:   []SectionSummary{},
	}
	l.Init(header.KindSectionList, version)
	if ex := scan.Extraction; ex != nil {
		for _, s := range ex.Sections {
			l.Sections = append(l.Sections, SectionSummary{
				RID:         s.RID,
				Source:      s.Source,
				MarkupBytes: len(s.StablePanelHTML),
			})
		}
		l.Skipped = ex.Skipped()
	}
	return l
}

// TableHeader implements serializer.Tabular.
func (l *SectionList) TableHeader() []string {
	return []string{"RELEASE", "SOURCE", "STABLE MARKUP (BYTES)"}
}

// TableRows implements serializer.Tabular.
func (l *SectionList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Sections))
	for _, s := range l.Sections {
		rows = append(rows, []string{s.RID, s.Source, strconv.Itoa(s.MarkupBytes)})
	}
	return rows
}
