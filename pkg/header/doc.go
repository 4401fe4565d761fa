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

// Package header provides the envelope written at the top of every document
// gkesync emits (run reports, section listings).
//
//	kind: SyncReport
//	apiVersion: gkesync.chkk.io/v1alpha1
//	metadata:
//	  timestamp: "2025-09-22T06:00:04Z"
//	  version: v0.3.1
//	  run: 0b6f6c1e-4c0f-4d8c-9a53-1c6a3c0d2f57
package header
