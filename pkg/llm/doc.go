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

// Package llm builds the extraction prompt and sends it to an
// OpenAI-compatible text-generation backend.
//
// Requests go through an ordered list of strategies: chat completions with
// a JSON response format, plain chat completions, then the responses
// endpoint. A strategy that fails (transport error, non-2xx status or an
// unreadable body) hands over to the next one. Requests are paced with a
// token-bucket limiter from golang.org/x/time/rate.
package llm
