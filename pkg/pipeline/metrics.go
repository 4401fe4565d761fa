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

package pipeline

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

// Metrics records one run. Each instance owns its registry so the textfile
// holds only this run's series.
type Metrics struct {
	registry *prometheus.Registry

	fetchAttempts     *prometheus.CounterVec
	sectionsOnPage    prometheus.Gauge
	sectionsNew       prometheus.Gauge
	sectionsExtracted prometheus.Gauge
	sectionsSkipped   prometheus.Gauge
	entriesMerged     prometheus.Gauge
	modelAttempts     *prometheus.CounterVec
	runTotal          *prometheus.CounterVec
	runDuration       prometheus.Histogram
	lastRun           prometheus.Gauge
}

// NewMetrics registers the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gkesync_fetch_attempts_total",
				Help: "Release notes retrieval attempts by HTTP status",
			},
			[]string{"status"}, // HTTP status code, or "error" when no response arrived
		),
		sectionsOnPage: f.NewGauge(prometheus.GaugeOpts{
			Name: "gkesync_sections_on_page",
			Help: "Release sections found on the release notes page",
		}),
		sectionsNew: f.NewGauge(prometheus.GaugeOpts{
			Name: "gkesync_sections_new",
			Help: "Release sections ahead of the checkpoint",
		}),
		sectionsExtracted: f.NewGauge(prometheus.GaugeOpts{
			Name: "gkesync_sections_extracted",
			Help: "New release sections with resolvable stable-channel content",
		}),
		sectionsSkipped: f.NewGauge(prometheus.GaugeOpts{
			Name: "gkesync_sections_skipped",
			Help: "New release sections dropped for lack of stable-channel content",
		}),
		entriesMerged: f.NewGauge(prometheus.GaugeOpts{
			Name: "gkesync_entries_merged",
			Help: "Entries inserted into the data artifact",
		}),
		modelAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gkesync_model_attempts_total",
				Help: "Model requests by strategy and outcome",
			},
			[]string{"strategy", "outcome"}, // outcome: success or error
		),
		runTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gkesync_runs_total",
				Help: "Sync runs by final status",
			},
			[]string{"status", "code"},
		),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gkesync_run_duration_seconds",
			Help:    "Wall time of a sync run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "gkesync_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in Prometheus text format, atomically
// replacing path. Suitable for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "write metrics textfile", err,
			map[string]any{"path": path})
	}
	return nil
}

func (m *Metrics) observeFetch(_ int, status int, _ error) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.fetchAttempts.WithLabelValues(label).Inc()
}

func (m *Metrics) observeModel(strategy string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.modelAttempts.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) observeRun(res *Result, err error) {
	code := ""
	if err != nil {
		code = string(errors.CodeOf(err))
	}
	m.runTotal.WithLabelValues(string(res.Status), code).Inc()
	m.runDuration.Observe(res.Duration.Seconds())
	m.lastRun.Set(float64(res.Finished.Unix()))
	if ex := res.Extraction; ex != nil {
		m.sectionsOnPage.Set(float64(len(ex.PageIDs)))
		m.sectionsNew.Set(float64(len(ex.NewIDs)))
		m.sectionsExtracted.Set(float64(len(ex.Sections)))
		m.sectionsSkipped.Set(float64(len(ex.Skipped())))
	}
	if res.Status == StatusChanged {
		m.entriesMerged.Set(float64(len(res.Entries)))
	}
}
