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

package serializer

import (
	"strings"
)

// OutputOption configures NewOutput.
type OutputOption func(*outputSettings)

type outputSettings struct {
	client ClientFunc
}

// WithClientFunc sets how the Kubernetes client is obtained for cm:// targets.
func WithClientFunc(fn ClientFunc) OutputOption {
	return func(s *outputSettings) {
		s.client = fn
	}
}

// NewOutput resolves target to a Serializer: "" or "-" is stdout,
// cm://namespace/name is a ConfigMap, anything else is a file path.
// Callers should Close the result when it implements Closer.
func NewOutput(format Format, target string, opts ...OutputOption) (Serializer, error) {
	s := &outputSettings{}
	for _, opt := range opts {
		opt(s)
	}

	trimmed := strings.TrimSpace(target)
	switch {
	case trimmed == "" || trimmed == "-":
		return NewStdoutWriter(format), nil
	case strings.HasPrefix(trimmed, ConfigMapURIScheme):
		namespace, name, err := parseConfigMapURI(trimmed)
		if err != nil {
			return nil, err
		}
		return NewConfigMapWriter(namespace, name, format, s.client), nil
	default:
		return NewFileWriter(format, trimmed)
	}
}
