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

package llm

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"k8s.io/utils/ptr"

	"github.com/chkk-io/gke-release-sync/pkg/entry"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/releasenotes"
)

// Instruction states the normalisation rules the model must apply.
const Instruction = "Extract ALL Stable-channel Kubernetes versions per release " +
	"(defaults/newly available/removed). Normalize to kube@X.Y.Z " +
	"(strip -gke*, -autopilot*, +cos*). De-duplicate and sort by " +
	"full SemVer ascending. Return ONLY JSON in the schema below."

const contextSeparator = "\n\nContext:\n"

// Schema is the example document embedded in every request.
type Schema struct {
	Entries []entry.Entry `json:"entries"`
}

// Payload is the machine-readable context appended to the prompt template.
type Payload struct {
	Instruction string                 `json:"instruction"`
	Schema      Schema                 `json:"schema"`
	TopExisting *string                `json:"topExisting"`
	Releases    []releasenotes.Section `json:"releases"`
}

// DefaultSchema describes one entry using placeholder values.
func DefaultSchema() Schema {
	return Schema{Entries: []entry.Entry{{
		Version:                "YYYY-RXX",
		RelatedProjectReleases: []string{"kube@1.30.14"},
		Source:                 "<url#anchor>",
	}}}
}

// NewPayload builds the request context. An empty checkpoint is sent as null.
func NewPayload(checkpoint string, sections []releasenotes.Section) Payload {
	p := Payload{
		Instruction: Instruction,
		Schema:      DefaultSchema(),
		Releases:    sections,
	}
	if checkpoint != "" {
		p.TopExisting = ptr.To(checkpoint)
	}
	if p.Releases == nil {
		p.Releases = []releasenotes.Section{}
	}
	return p
}

// LoadTemplate reads the prompt template file.
func LoadTemplate(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeConfiguration, "read prompt template", err,
			map[string]any{"path": path})
	}
	return string(b), nil
}

// BuildPrompt appends the JSON-encoded payload to the template.
func BuildPrompt(template string, p Payload) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// release markup is sent verbatim
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "encode prompt context", err)
	}
	return template + contextSeparator + strings.TrimRight(buf.String(), "\n"), nil
}
