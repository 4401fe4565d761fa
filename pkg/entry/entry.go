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

package entry

import (
	"encoding/json"
	"strings"

	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

const snippetLimit = 160

// Entry is one release the model extracted from a stable-channel section.
type Entry struct {
	Version                string   `json:"Version" yaml:"version"`
	RelatedProjectReleases []string `json:"RelatedProjectReleases" yaml:"relatedProjectReleases"`
	Source                 string   `json:"source" yaml:"source"`
}

type envelope struct {
	Entries []Entry `json:"entries"`
}

// Decode recovers the entries list from model output. It tries the text as
// is, then with a surrounding code fence removed, then the span from the first
// '{' to the last '}'. A document without an "entries" key yields no entries.
// Failure returns an ErrCodeModelOutput error whose context holds the raw text.
func Decode(text string) ([]Entry, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.NewWithContext(errors.ErrCodeModelOutput, "empty model response",
			map[string]any{"raw": text})
	}

	var lastErr error
	for _, candidate := range candidates(trimmed) {
		var env envelope
		if err := json.Unmarshal([]byte(candidate), &env); err != nil {
			lastErr = err
			continue
		}
		return env.Entries, nil
	}

	return nil, errors.WrapWithContext(errors.ErrCodeModelOutput,
		"model response is not valid JSON: "+snippet(trimmed), lastErr,
		map[string]any{"raw": text})
}

// candidates lists the distinct decode attempts in order.
func candidates(trimmed string) []string {
	out := []string{trimmed}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, seen := range out {
			if seen == s {
				return
			}
		}
		out = append(out, s)
	}

	unfenced := stripFence(trimmed)
	add(unfenced)
	if start := strings.Index(unfenced, "{"); start >= 0 {
		if end := strings.LastIndex(unfenced, "}"); end > start {
			add(unfenced[start : end+1])
		}
	}
	return out
}

// stripFence removes a leading ``` (optionally ```json) line and a trailing ```.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimLeft(s[3:], " \t")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	body = strings.TrimLeft(body, " \t\r\n")
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func snippet(s string) string {
	clean := strings.Join(strings.Fields(s), " ")
	runes := []rune(clean)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
