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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/chkk-io/gke-release-sync/pkg/defaults"
	"github.com/chkk-io/gke-release-sync/pkg/header"
	"github.com/chkk-io/gke-release-sync/pkg/k8s/client"
)

const fieldManager = "gkesync"

// ClientFunc returns the Kubernetes client used for ConfigMap output.
type ClientFunc func() (client.Interface, error)

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap using
// server-side apply, creating or replacing the document key.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	client    ClientFunc
}

// NewConfigMapWriter creates a ConfigMapWriter. A nil ClientFunc uses the
// shared client from kubeconfig discovery.
func NewConfigMapWriter(namespace, name string, format Format, fn ClientFunc) *ConfigMapWriter {
	if fn == nil {
		fn = func() (client.Interface, error) {
			c, _, err := client.GetKubeClient()
			return c, err
		}
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    normalize(format),
		client:    fn,
	}
}

// Serialize stores data under "<kind>.<ext>" (e.g. syncreport.json) together
// with "format" and "timestamp" keys. Kind and timestamp come from the
// document's header when it has one.
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	cs, err := w.client()
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	content, err := Marshal(w.format, data)
	if err != nil {
		return err
	}

	kind, version, timestamp := "document", "unknown", time.Now().UTC().Format(time.RFC3339)
	if h, ok := data.(interface {
		GetKind() header.Kind
		GetMetadata() map[string]string
	}); ok {
		if k := h.GetKind().String(); k != "" {
			kind = k
		}
		md := h.GetMetadata()
		if v := md["version"]; v != "" {
			version = v
		}
		if ts := md["timestamp"]; ts != "" {
			timestamp = ts
		}
	}

	dataKey := fmt.Sprintf("%s.%s", strings.ToLower(kind), w.format.Extension())
	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      fieldManager,
			"app.kubernetes.io/component": strings.ToLower(kind),
			"app.kubernetes.io/version":   version,
		}).
		WithData(map[string]string{
			dataKey:     string(content),
			"format":    string(w.format),
			"timestamp": timestamp,
		})

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"key", dataKey)

	_, err = cs.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// Close is a no-op.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, ConfigMapURIScheme), "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}
