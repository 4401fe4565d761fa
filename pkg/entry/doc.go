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

// Package entry decodes the release entries a text-generation model returns.
//
// Models frequently wrap JSON in Markdown code fences or surround it with
// prose, so Decode recovers from both before giving up:
//
//	entries, err := entry.Decode(text)
//	if err != nil {
//	    // errors.CodeOf(err) == errors.ErrCodeModelOutput
//	    // errors.ContextOf(err)["raw"] holds the unmodified text
//	}
package entry
