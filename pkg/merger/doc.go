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

// Package merger splices extracted release entries into the Go data file that
// declares the release collection.
//
// New entries are rendered as composite literal elements and inserted as one
// contiguous block directly after the collection's opening brace:
//
//	var GKEProjectReleases = []model.ProjectRelease{
//		{
//			Project: GKE.ID,
//			Version: "2025-R38",
//			RelatedProjectReleases: []string{
//				"kube@1.32.7",
//				"kube@1.33.3",
//			},
//		},
//		// source: https://cloud.google.com/kubernetes-engine/docs/release-notes#...
//		{
//			...existing entries, untouched...
//
// Each entry's related releases are de-duplicated and sorted numerically by
// MAJOR.MINOR.PATCH. After a write the configured formatter (gofmt -s -w . by
// default) runs over the tree; its failure is logged, never returned.
package merger
