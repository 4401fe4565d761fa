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

// Package defaults provides centralized configuration constants for gkesync.
//
// Timeouts, retry bounds, and pacing values used by the fetcher, the model
// client, the formatter pass, and the report writers live here so every
// stage agrees on them.
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.FetchTimeout)
//	defer cancel()
//
// # Guidelines
//
//   - Page fetch: 60s per attempt, 3 attempts, linear 1s/2s/3s backoff
//   - Model request: 180s per strategy attempt
//   - Formatter: 2m, best effort
package defaults
