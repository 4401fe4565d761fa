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

package fetcher

import (
	"context"
	"fmt"

	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

// Fetcher retrieves a remote document as raw markup.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// StatusError reports a non-2xx response from the remote document source.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http %d", e.URL, e.StatusCode)
}

// Retryable reports whether the status belongs to the server-side failure class.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// New returns the fetcher selected by cfg.FetchMode. Extra options only apply
// to the HTTP fetcher.
func New(cfg *config.Config, opts ...Option) (Fetcher, error) {
	switch cfg.FetchMode {
	case config.FetchModeHTTP:
		base := []Option{
			WithUserAgent(cfg.UserAgent),
			WithTimeout(cfg.FetchTimeout),
			WithAttempts(cfg.FetchAttempts),
			WithBackoff(cfg.FetchBackoff),
			WithConnectTimeout(cfg.ConnectTimeout),
		}
		return NewHTTPFetcher(append(base, opts...)...), nil
	case config.FetchModeBrowser:
		return NewBrowserFetcher(cfg.UserAgent, cfg.FetchTimeout), nil
	default:
		return nil, errors.New(errors.ErrCodeConfiguration, fmt.Sprintf("unknown fetch mode %q", cfg.FetchMode))
	}
}
