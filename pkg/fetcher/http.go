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
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/chkk-io/gke-release-sync/pkg/defaults"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/httpclient"
)

// AttemptObserver is notified after every retrieval attempt. status is zero
// when no response was received.
type AttemptObserver func(attempt, status int, err error)

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithAttempts sets the total number of attempts, including the first.
func WithAttempts(n int) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithBackoff sets the linear backoff step.
func WithBackoff(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d >= 0 {
			f.backoff = d
		}
	}
}

// WithConnectTimeout bounds TCP connection setup on the default transport.
func WithConnectTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.connectTimeout = d
		}
	}
}

// WithTransport overrides the round tripper used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) {
		if rt != nil {
			f.transport = rt
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(f *HTTPFetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// WithAttemptObserver registers a callback run after every attempt.
func WithAttemptObserver(o AttemptObserver) Option {
	return func(f *HTTPFetcher) {
		f.observe = o
	}
}

// HTTPFetcher retrieves server-rendered pages with a colly collector. 5xx
// responses and transport failures are retried with a linearly growing
// backoff; any other status fails immediately.
type HTTPFetcher struct {
	userAgent string
	timeout   time.Duration
	attempts  int
	backoff   time.Duration
	sleep     func(context.Context, time.Duration) error
	observe   AttemptObserver

	// connectTimeout only applies when no transport is injected
	connectTimeout time.Duration
	transport      http.RoundTripper
}

// NewHTTPFetcher creates an HTTPFetcher with defaults from pkg/defaults.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		timeout:  defaults.FetchTimeout,
		attempts: defaults.FetchAttempts,
		backoff:  defaults.FetchBackoffStep,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.transport == nil {
		f.transport = httpclient.NewTransport(httpclient.WithConnectTimeout(f.connectTimeout))
	}
	return f
}

// Fetch returns the page body. The returned error carries ErrCodeUnavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		body, status, err := f.fetchOnce(ctx, pageURL)
		if f.observe != nil {
			f.observe(attempt+1, status, err)
		}
		if err == nil {
			slog.Debug("fetched release notes", "url", pageURL, "attempt", attempt+1, "bytes", len(body))
			return body, nil
		}

		lastErr = err
		if !f.retryable(ctx, err) {
			break
		}
		slog.Warn("release notes fetch failed",
			"url", pageURL,
			"attempt", attempt+1,
			"status", status,
			"error", err)

		if attempt+1 < f.attempts {
			if serr := f.sleep(ctx, time.Duration(attempt+1)*f.backoff); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	return "", errors.WrapWithContext(errors.ErrCodeUnavailable, "fetch release notes", lastErr,
		map[string]any{"url": pageURL, "attempts": f.attempts})
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, pageURL string) (string, int, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	// release-notes pages run to several megabytes
	c.MaxBodySize = 0
	c.WithTransport(f.transport)
	c.SetRequestTimeout(f.timeout)

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(pageURL); err != nil {
		if status >= http.StatusMultipleChoices {
			return "", status, &StatusError{URL: pageURL, StatusCode: status}
		}
		return "", status, err
	}
	return string(body), status, nil
}

func (f *HTTPFetcher) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	// transport failure: connection refused, reset, per-attempt timeout
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
