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
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"

	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

const (
	versionUpdatesLabel = "Version updates"
	tabsetClass         = "devsite-tabs"
	stableTabLabel      = "stable"
	stablePanelFallback = `section#tabpanel-stable-channel[role="tabpanel"]`
	fallbackCandidates  = "h5, h6, strong, p, li"
)

var (
	headerIDSuffixes = []string{"-version-updates", "_version_updates"}

	// releaseHeaderPattern pulls the release id out of "(2025-R37) Version updates".
	releaseHeaderPattern = regexp.MustCompile(`(?i)\((\d{4}-R\d{2})\)\s*Version updates`)
)

// Section is one release whose stable-channel content was isolated from the page.
// The JSON names are the keys the extraction prompt documents.
type Section struct {
	RID             string `json:"rid" yaml:"rid"`
	StablePanelHTML string `json:"stable_panel_html" yaml:"-"`
	Source          string `json:"source" yaml:"source"`
}

// Extraction is the outcome of scanning a release-notes page against a checkpoint.
type Extraction struct {
	// Checkpoint is the boundary id, empty on a first run.
	Checkpoint string
	// PageIDs lists every release id found on the page, in page order.
	PageIDs []string
	// CheckpointIndex is the position of Checkpoint in PageIDs, or -1.
	CheckpointIndex int
	// NewIDs lists the ids ahead of the checkpoint, in page order.
	NewIDs []string
	// Sections holds the new releases that had resolvable stable content.
	Sections []Section
}

// Skipped returns the new ids that were dropped for lack of stable content.
func (e *Extraction) Skipped() []string {
	kept := make(map[string]int, len(e.Sections))
	for _, s := range e.Sections {
		kept[s.RID]++
	}
	var out []string
	for _, id := range e.NewIDs {
		if kept[id] > 0 {
			kept[id]--
			continue
		}
		out = append(out, id)
	}
	return out
}

type releaseHeader struct {
	rid string
	sel *goquery.Selection
}

// Extract parses markup and returns the release sections that are newer than
// checkpoint. The page lists releases newest first; everything before the
// checkpoint's header is new. When the checkpoint is empty or not on the page
// every release is treated as new.
func Extract(markup, pageURL, checkpoint string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "parse release notes markup", err)
	}

	headers := findReleaseHeaders(doc)

	ex := &Extraction{
		Checkpoint:      checkpoint,
		PageIDs:         make([]string, 0, len(headers)),
		CheckpointIndex: -1,
	}
	for i, h := range headers {
		ex.PageIDs = append(ex.PageIDs, h.rid)
		if checkpoint != "" && ex.CheckpointIndex < 0 && h.rid == checkpoint {
			ex.CheckpointIndex = i
		}
	}

	fresh := headers
	if ex.CheckpointIndex >= 0 {
		fresh = headers[:ex.CheckpointIndex]
	}

	anchors := newAnchorIndex(doc)
	for _, h := range fresh {
		ex.NewIDs = append(ex.NewIDs, h.rid)

		panel := stablePanel(h.sel)
		if panel == nil {
			continue
		}
		fragment, err := goquery.OuterHtml(panel)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("render stable panel for %s", h.rid), err)
		}
		ex.Sections = append(ex.Sections, Section{
			RID:             h.rid,
			StablePanelHTML: fragment,
			Source:          pageURL + anchors.fragmentFor(h.sel),
		})
	}

	slog.Debug("release notes scanned",
		"checkpoint", checkpoint,
		"headers_on_page", len(ex.PageIDs),
		"checkpoint_index", ex.CheckpointIndex,
		"new_above_checkpoint", len(ex.NewIDs),
		"extracted", len(ex.Sections),
		"ids", sectionIDs(ex.Sections))

	return ex, nil
}

func findReleaseHeaders(doc *goquery.Document) []releaseHeader {
	var out []releaseHeader
	doc.Find("h4").Each(func(_ int, h *goquery.Selection) {
		id, _ := h.Attr("id")
		if !hasAnySuffix(id, headerIDSuffixes) {
			return
		}
		label := headerLabel(h)
		if !strings.HasSuffix(label, versionUpdatesLabel) {
			return
		}
		m := releaseHeaderPattern.FindStringSubmatch(label)
		if m == nil {
			return
		}
		out = append(out, releaseHeader{rid: m[1], sel: h})
	})
	return out
}

// headerLabel prefers the data-text attribute devsite puts on headings. A
// non-empty attribute wins even when it is only whitespace, which excludes
// the heading.
func headerLabel(h *goquery.Selection) string {
	if v, ok := h.Attr("data-text"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return joinedText(h, " ")
}

// isReleaseBoundary reports whether s starts the next release's content.
func isReleaseBoundary(s *goquery.Selection) bool {
	return s.Is("h3, h4") && releaseHeaderPattern.MatchString(joinedText(s, " "))
}

// stablePanel resolves the stable-channel fragment for a release header, or nil.
func stablePanel(h *goquery.Selection) *goquery.Selection {
	if tabset := followingTabset(h); tabset != nil {
		if panel := tabsetStablePanel(tabset); panel != nil {
			return panel
		}
	}
	return firstStableMention(h)
}

func followingTabset(h *goquery.Selection) *goquery.Selection {
	var tabset *goquery.Selection
	h.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		if sib.Is("div") && sib.HasClass(tabsetClass) {
			tabset = sib
			return false
		}
		return !isReleaseBoundary(sib)
	})
	return tabset
}

func tabsetStablePanel(tabset *goquery.Selection) *goquery.Selection {
	var tab *goquery.Selection
	tabset.Find(`a[role="tab"], a[role="button"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if fold(joinedText(a, "")) == stableTabLabel {
			tab = a
			return false
		}
		return true
	})

	if tab != nil {
		if pid, _ := tab.Attr("aria-controls"); pid != "" {
			panel := tabset.Find(`section[role="tabpanel"]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
				id, _ := s.Attr("id")
				return id == pid
			}).First()
			if panel.Length() > 0 {
				return panel
			}
		}
	}

	if panel := tabset.Find(stablePanelFallback).First(); panel.Length() > 0 {
		return panel
	}
	return nil
}

// firstStableMention scans the content between h and the next release header
// for the first heading, paragraph or list item that mentions "stable".
func firstStableMention(h *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	mentionsStable := func(s *goquery.Selection) bool {
		return strings.Contains(fold(joinedText(s, " ")), stableTabLabel)
	}

	h.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		if isReleaseBoundary(sib) {
			return false
		}
		if sib.Is(fallbackCandidates) && mentionsStable(sib) {
			found = sib
			return false
		}
		sib.Find(fallbackCandidates).EachWithBreak(func(_ int, c *goquery.Selection) bool {
			if mentionsStable(c) {
				found = c
				return false
			}
			return true
		})
		return found == nil
	})
	return found
}

// anchorIndex answers "nearest preceding h2/h3" in document order.
type anchorIndex struct {
	order    map[*html.Node]int
	headings []*goquery.Selection
	position []int
}

func newAnchorIndex(doc *goquery.Document) *anchorIndex {
	idx := &anchorIndex{order: make(map[*html.Node]int)}
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		idx.order[s.Nodes[0]] = i
	})
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		idx.headings = append(idx.headings, s)
		idx.position = append(idx.position, idx.order[s.Nodes[0]])
	})
	return idx
}

// fragmentFor returns "#id" of the nearest preceding h2/h3, or "" when that
// heading is missing or has no id.
func (a *anchorIndex) fragmentFor(h *goquery.Selection) string {
	pos, ok := a.order[h.Nodes[0]]
	if !ok {
		return ""
	}
	i := sort.SearchInts(a.position, pos) - 1
	if i < 0 {
		return ""
	}
	if id, _ := a.headings[i].Attr("id"); id != "" {
		return "#" + id
	}
	return ""
}

// joinedText concatenates the trimmed, non-empty text nodes under s with sep.
func joinedText(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func sectionIDs(sections []Section) []string {
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.RID)
	}
	return ids
}
