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
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/chkk-io/gke-release-sync/pkg/defaults"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/logging"
)

// BrowserFetcher renders the page in headless Chrome and returns the
// resulting DOM. It needs a Chrome or Chromium binary on PATH and does not
// retry.
type BrowserFetcher struct {
	userAgent string
	timeout   time.Duration
	errorf    func(string, ...any)
}

// NewBrowserFetcher creates a BrowserFetcher.
func NewBrowserFetcher(userAgent string, timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = defaults.BrowserRenderTimeout
	}
	return &BrowserFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		errorf:    logging.NewLogLogger(slog.LevelWarn).Printf,
	}
}

// Fetch navigates to pageURL and captures the outer HTML of the document.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(f.errorf))
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeUnavailable, "render release notes", err,
			map[string]any{"url": pageURL})
	}
	return html, nil
}
