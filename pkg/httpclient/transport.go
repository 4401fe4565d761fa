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

// Package httpclient builds the tuned outbound transport shared by the page
// fetcher and the model client.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/chkk-io/gke-release-sync/pkg/defaults"
)

// Option configures a transport built by NewTransport.
type Option func(*settings)

type settings struct {
	connectTimeout        time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
}

// WithConnectTimeout overrides the dial timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}

// WithResponseHeaderTimeout sets how long to wait for response headers.
// Zero disables the limit, which the model client relies on.
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.responseHeaderTimeout = d
	}
}

func newSettings(opts ...Option) *settings {
	s := &settings{
		connectTimeout:        defaults.HTTPConnectTimeout,
		tlsHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		responseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		idleConnTimeout:       defaults.HTTPIdleConnTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTransport returns an *http.Transport with the default pooling and timeout settings.
func NewTransport(opts ...Option) *http.Transport {
	s := newSettings(opts...)

	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,

		DialContext: (&net.Dialer{
			Timeout:   s.connectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   s.tlsHandshakeTimeout,
		ResponseHeaderTimeout: s.responseHeaderTimeout,
		ExpectContinueTimeout: defaults.HTTPExpectContinueTimeout,

		IdleConnTimeout:   s.idleConnTimeout,
		ForceAttemptHTTP2: true,

		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// NewClient returns an *http.Client with a total timeout over NewTransport.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(opts...),
	}
}
