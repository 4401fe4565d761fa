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

// Package fetcher retrieves the remote release-notes document.
//
// HTTPFetcher (the default) performs a bounded-timeout GET through a colly
// collector and retries server-side failures with linear backoff:
//
//	attempt 1 fails with 503 -> wait 1s
//	attempt 2 fails with 502 -> wait 2s
//	attempt 3 fails         -> SERVICE_UNAVAILABLE
//
// 4xx responses are not retried. BrowserFetcher renders the page with
// headless Chrome for layouts that are only assembled client-side.
package fetcher
