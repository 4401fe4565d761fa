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
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/chkk-io/gke-release-sync/pkg/entry"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/version"
)

// AnchorPattern matches the declaration that opens the collection, e.g.
// "var GKEProjectReleases = []model.ProjectRelease{". The element type may be
// package qualified.
func AnchorPattern(collection, elementType string) *regexp.Regexp {
	return regexp.MustCompile(`(?:var\s+)?` + regexp.QuoteMeta(collection) +
		`\s*=\s*\[\]\s*(?:\w+\.)?` + regexp.QuoteMeta(elementType) + `\s*\{`)
}

// Splice inserts the rendered entries directly after the collection's opening
// brace and leaves every other byte as it was.
func Splice(content string, anchor *regexp.Regexp, projectRef string, entries []entry.Entry) (string, error) {
	loc := anchor.FindStringIndex(content)
	if loc == nil {
		return "", errors.NewWithContext(errors.ErrCodeStructure, "collection declaration not found",
			map[string]any{"pattern": anchor.String()})
	}
	if len(entries) == 0 {
		return content, nil
	}

	var b strings.Builder
	at := loc[1]
	if strings.HasPrefix(content[at:], "\n") {
		at++
	} else {
		// "{}" or "{ ...": the blocks need a line of their own
		b.WriteString("\n")
	}
	for _, e := range entries {
		b.WriteString(Render(projectRef, e))
	}
	return content[:at] + b.String() + content[at:], nil
}

// Render formats one entry as a composite literal element followed by a
// provenance comment, each on whole lines. The text is already gofmt-clean.
func Render(projectRef string, e entry.Entry) string {
	var b strings.Builder
	b.WriteString("\t{\n")
	fmt.Fprintf(&b, "\t\tProject: %s,\n", projectRef)
	fmt.Fprintf(&b, "\t\tVersion: %s,\n", strconv.Quote(e.Version))
	b.WriteString("\t\tRelatedProjectReleases: []string{\n")
	for _, r := range SortReleases(e.RelatedProjectReleases) {
		fmt.Fprintf(&b, "\t\t\t%s,\n", strconv.Quote(r))
	}
	b.WriteString("\t\t},\n")
	b.WriteString("\t},\n")
	fmt.Fprintf(&b, "\t// source: %s\n", strings.Join(strings.Fields(e.Source), " "))
	return b.String()
}

// SortReleases de-duplicates releases and orders them by the first
// MAJOR.MINOR.PATCH found in each; strings without one sort as 0.0.0.
// Ties keep lexical order.
func SortReleases(releases []string) []string {
	out := sets.List(sets.New(releases...))
	slices.SortStableFunc(out, func(a, b string) int {
		return version.FromText(a).Compare(version.FromText(b))
	})
	return out
}
