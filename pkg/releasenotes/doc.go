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

// Package releasenotes locates per-release "Version updates" sections on the
// GKE release-notes page and isolates each release's stable-channel content.
//
// A release header is an h4 whose id ends in "-version-updates" (or
// "_version_updates") and whose label ends in "Version updates"; the release
// id is read from the "(YYYY-RNN)" prefix of that label. For each header the
// stable content is, in order of preference:
//
//  1. the tab panel referenced by the "Stable" tab's aria-controls inside the
//     first devsite-tabs block before the next release header;
//  2. the conventional section#tabpanel-stable-channel in that block;
//  3. the first h5, h6, strong, p or li between this header and the next
//     that mentions "stable".
//
// Releases with none of these are dropped without error.
package releasenotes
