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

// Package version parses and orders the numeric part of release strings such
// as "kube@1.30.14" or "1.31.1-gke.1146000".
package version

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
)

// triplet finds the first MAJOR.MINOR.PATCH run anywhere in a string.
var triplet = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// Version is a three component numeric version. Suffixes such as
// "-gke.1337000" or "+cos" carry no ordering weight and are not kept.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
}

// String returns "Major.Minor.Patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// FromText returns the first MAJOR.MINOR.PATCH found in s. Strings without
// one yield the zero Version, which sorts before every real release.
func FromText(s string) Version {
	m := triplet.FindStringSubmatch(s)
	if m == nil {
		return Version{}
	}
	return Version{
		Major: atoi(m[1]),
		Minor: atoi(m[2]),
		Patch: atoi(m[3]),
	}
}

// Compare orders versions numerically by major, then minor, then patch.
// Returns -1, 0 or 1.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// digits-only input that overflows int
		return 0
	}
	return n
}
