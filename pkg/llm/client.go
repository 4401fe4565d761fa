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

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/chkk-io/gke-release-sync/pkg/config"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
	"github.com/chkk-io/gke-release-sync/pkg/httpclient"
)

// SystemPrompt is sent with both chat strategies.
const SystemPrompt = "You are a precise data extractor. Return ONLY strict JSON with no prose and no code fences."

const (
	chatPath      = "chat/completions"
	responsesPath = "responses"
	snippetLimit  = 200
)

// Completion is the raw model text together with the strategy that produced it.
type Completion struct {
	Text     string
	Strategy string
}

// Completer sends a prompt to a text-generation backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Strategy   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Strategy, e.StatusCode, e.Body)
}

// AttemptObserver is called after each strategy attempt; err is nil on success.
type AttemptObserver func(strategy string, err error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLimiter overrides the limiter pacing requests across strategies.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithStrategies replaces the fallback chain.
func WithStrategies(s ...Strategy) Option {
	return func(c *Client) {
		if len(s) > 0 {
			c.strategies = s
		}
	}
}

// WithAttemptObserver registers a callback run after every strategy attempt.
func WithAttemptObserver(o AttemptObserver) Option {
	return func(c *Client) {
		c.observe = o
	}
}

// Client talks to an OpenAI-compatible backend, trying each strategy in turn
// until one returns a response.
type Client struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	strategies []Strategy
	observe    AttemptObserver
}

// NewClient validates the credential and builds a Client from cfg. A missing
// credential is an ErrCodeConfiguration error.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "model configuration is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, config.EnvAPIKey+" not set")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil || cfg.APIBaseURL == "" {
		return nil, errors.NewWithContext(errors.ErrCodeConfiguration, "invalid model API base URL",
			map[string]any{"url": cfg.APIBaseURL})
	}

	c := &Client{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: cfg.APIBaseURL,
		// the model may think for minutes before the first header arrives
		httpClient: httpclient.NewClient(cfg.ModelTimeout,
			httpclient.WithResponseHeaderTimeout(0),
			httpclient.WithConnectTimeout(cfg.ConnectTimeout)),
		limiter:    rate.NewLimiter(rate.Limit(cfg.ModelRequestsPerSecond), 1),
		strategies: DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete runs the strategy chain. The first strategy to get a 2xx answer
// wins, even when its text is empty; empty text is then reported as an
// ErrCodeModelOutput error. When every strategy fails the last failure is
// returned as ErrCodeUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (*Completion, error) {
	var lastErr error
	for _, s := range c.strategies {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, "wait for model request slot", err)
		}

		text, err := c.try(ctx, s, prompt)
		if c.observe != nil {
			c.observe(s.Name, err)
		}
		if err == nil {
			text = strings.TrimSpace(text)
			slog.Debug("model responded", "strategy", s.Name, "bytes", len(text))
			if text == "" {
				return nil, errors.NewWithContext(errors.ErrCodeModelOutput, "model returned empty output",
					map[string]any{"strategy": s.Name})
			}
			return &Completion{Text: text, Strategy: s.Name}, nil
		}

		lastErr = err
		slog.Warn("model strategy failed", "strategy", s.Name, "error", err)
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = stderrors.New("no model strategies configured")
	}
	return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "model request failed", lastErr,
		map[string]any{"model": c.model, "strategies": len(c.strategies)})
}

func (c *Client) try(ctx context.Context, s Strategy, prompt string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, s.Path)
	if err != nil {
		return "", fmt.Errorf("%s: build url: %w", s.Name, err)
	}
	encoded, err := json.Marshal(s.Body(c.model, prompt))
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", s.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", s.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", s.Name, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{Strategy: s.Name, StatusCode: resp.StatusCode, Body: summarize(string(body))}
	}
	return s.Text(body)
}

func summarize(s string) string {
	clean := strings.Join(strings.Fields(s), " ")
	if runes := []rune(clean); len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
