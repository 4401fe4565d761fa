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

package defaults

import "time"

// Release-notes page fetch.
const (
	// FetchTimeout bounds a single page retrieval attempt.
	FetchTimeout = 60 * time.Second

	// FetchAttempts is the total number of retrieval attempts, including the first.
	FetchAttempts = 3

	// FetchBackoffStep is the linear backoff unit: attempt n (0-based) waits
	// (n+1)*FetchBackoffStep before the next try.
	FetchBackoffStep = 1 * time.Second

	// BrowserRenderTimeout bounds navigation and DOM capture in browser fetch mode.
	BrowserRenderTimeout = 90 * time.Second
)

// Model backend requests.
const (
	// ModelRequestTimeout bounds one request to the text-generation backend.
	ModelRequestTimeout = 180 * time.Second

	// ModelRequestsPerSecond paces successive fallback strategy requests.
	ModelRequestsPerSecond = 1.0
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 10 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	// The model backend may take minutes before the first byte, so this is
	// only applied to the page fetch transport.
	HTTPResponseHeaderTimeout = 30 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Post-merge and reporting.
const (
	// FormatTimeout bounds the best-effort formatter pass over the source tree.
	FormatTimeout = 2 * time.Minute

	// ConfigMapWriteTimeout is the timeout for writing the run report to a ConfigMap.
	ConfigMapWriteTimeout = 30 * time.Second
)
