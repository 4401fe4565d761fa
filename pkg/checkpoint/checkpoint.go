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

// Package checkpoint finds the most recent release already recorded in the
// data artifact. That identifier is the boundary between known and new
// sections on the release-notes page.
package checkpoint

import (
	"os"
	"regexp"

	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

var (
	// releaseIDPattern matches a complete release identifier such as 2025-R37.
	releaseIDPattern = regexp.MustCompile(`^\d{4}-R\d{2}$`)

	// versionFieldPattern matches a Version field holding a release identifier.
	versionFieldPattern = regexp.MustCompile(`(?m)^\s*Version:\s*"(\d{4}-R\d{2})"`)
)

// IsReleaseID reports whether s is shaped like YYYY-RNN.
func IsReleaseID(s string) bool {
	return releaseIDPattern.MatchString(s)
}

// Latest returns the first Version field value in text that is shaped like a
// release identifier, scanning top to bottom. The boolean is false when no
// such field exists, which is the normal state of a first run.
func Latest(text string) (string, bool) {
	m := versionFieldPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Read loads the artifact at path and returns its latest release identifier.
func Read(path string) (string, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeInternal
		if os.IsNotExist(err) {
			code = errors.ErrCodeNotFound
		}
		return "", false, errors.WrapWithContext(code, "read artifact", err, map[string]any{"path": path})
	}
	id, ok := Latest(string(b))
	return id, ok, nil
}
