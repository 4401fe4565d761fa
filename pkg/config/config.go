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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/chkk-io/gke-release-sync/pkg/defaults"
	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

// FetchMode selects how the release-notes page is retrieved.
type FetchMode string

const (
	// FetchModeHTTP retrieves the server-rendered markup with a plain GET.
	FetchModeHTTP FetchMode = "http"
	// FetchModeBrowser renders the page in headless Chrome and captures the DOM.
	FetchModeBrowser FetchMode = "browser"
)

// IsUnknown reports whether m is not a supported fetch mode.
func (m FetchMode) IsUnknown() bool {
	switch m {
	case FetchModeHTTP, FetchModeBrowser:
		return false
	default:
		return true
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvModel   = "OPENAI_MODEL"
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
)

// Built-in defaults.
const (
	DefaultReleaseNotesURL = "https://cloud.google.com/kubernetes-engine/docs/release-notes"
	DefaultArtifactPath    = "pkg/project/gke.go"
	DefaultPromptPath      = "prompts/gke-latest.md"
	DefaultCollectionName  = "GKEProjectReleases"
	DefaultElementType     = "ProjectRelease"
	DefaultProjectRef      = "GKE.ID"
	DefaultModel           = "gpt-o3"
	DefaultAPIBaseURL      = "https://api.openai.com/v1"
	DefaultUserAgent       = "chkk-gke-bot/1.0 (+https://github.com/chkk-io/gke-release-sync)"
)

// Config holds everything a sync run needs. It is built once by the CLI and
// passed into the pipeline; nothing below the CLI reads the environment.
type Config struct {
	// Remote document
	ReleaseNotesURL string
	UserAgent       string
	FetchMode       FetchMode
	FetchTimeout    time.Duration
	FetchAttempts   int
	FetchBackoff    time.Duration

	// ConnectTimeout bounds TCP connection setup for every outbound request.
	ConnectTimeout time.Duration

	// Data artifact
	ArtifactPath   string
	CollectionName string
	ElementType    string
	ProjectRef     string

	// Formatter pass run after a successful write
	FormatDir     string
	FormatCommand []string

	// Model backend
	PromptPath             string
	Model                  string
	APIKey                 string
	APIBaseURL             string
	ModelTimeout           time.Duration
	ModelRequestsPerSecond float64

	// DryRun renders the merge but never writes the artifact.
	DryRun bool
}

// NewConfig returns a Config populated with built-in defaults.
func NewConfig() *Config {
	return &Config{
		ReleaseNotesURL:        DefaultReleaseNotesURL,
		UserAgent:              DefaultUserAgent,
		FetchMode:              FetchModeHTTP,
		FetchTimeout:           defaults.FetchTimeout,
		FetchAttempts:          defaults.FetchAttempts,
		FetchBackoff:           defaults.FetchBackoffStep,
		ConnectTimeout:         defaults.HTTPConnectTimeout,
		ArtifactPath:           DefaultArtifactPath,
		CollectionName:         DefaultCollectionName,
		ElementType:            DefaultElementType,
		ProjectRef:             DefaultProjectRef,
		FormatDir:              ".",
		FormatCommand:          []string{"gofmt", "-s", "-w", "."},
		PromptPath:             DefaultPromptPath,
		Model:                  DefaultModel,
		APIBaseURL:             DefaultAPIBaseURL,
		ModelTimeout:           defaults.ModelRequestTimeout,
		ModelRequestsPerSecond: defaults.ModelRequestsPerSecond,
	}
}

// fileConfig is the on-disk shape shared by YAML and TOML config files.
// The credential is intentionally absent; it only comes from the environment.
type fileConfig struct {
	ReleaseNotesURL        string   `yaml:"release_notes_url" toml:"release_notes_url"`
	UserAgent              string   `yaml:"user_agent" toml:"user_agent"`
	FetchMode              string   `yaml:"fetch_mode" toml:"fetch_mode"`
	FetchTimeoutSeconds    int      `yaml:"fetch_timeout_seconds" toml:"fetch_timeout_seconds"`
	FetchAttempts          int      `yaml:"fetch_attempts" toml:"fetch_attempts"`
	FetchBackoffSeconds    int      `yaml:"fetch_backoff_seconds" toml:"fetch_backoff_seconds"`
	ConnectTimeoutSeconds  int      `yaml:"connect_timeout_seconds" toml:"connect_timeout_seconds"`
	ArtifactPath           string   `yaml:"artifact_path" toml:"artifact_path"`
	CollectionName         string   `yaml:"collection_name" toml:"collection_name"`
	ElementType            string   `yaml:"element_type" toml:"element_type"`
	ProjectRef             string   `yaml:"project_ref" toml:"project_ref"`
	FormatDir              string   `yaml:"format_dir" toml:"format_dir"`
	FormatCommand          []string `yaml:"format_command" toml:"format_command"`
	PromptPath             string   `yaml:"prompt_path" toml:"prompt_path"`
	Model                  string   `yaml:"model" toml:"model"`
	APIBaseURL             string   `yaml:"api_base_url" toml:"api_base_url"`
	ModelTimeoutSeconds    int      `yaml:"model_timeout_seconds" toml:"model_timeout_seconds"`
	ModelRequestsPerSecond float64  `yaml:"model_requests_per_second" toml:"model_requests_per_second"`
}

// LoadFile overlays settings from a YAML (.yaml, .yml) or TOML (.toml) file.
// Zero values in the file leave the current setting untouched.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, fmt.Sprintf("read config file %s", path), err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return errors.New(errors.ErrCodeConfiguration,
			fmt.Sprintf("unsupported config file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path)))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, fmt.Sprintf("parse config file %s", path), err)
	}

	c.overlay(fc)
	return nil
}

func (c *Config) overlay(fc fileConfig) {
	setString(&c.ReleaseNotesURL, fc.ReleaseNotesURL)
	setString(&c.UserAgent, fc.UserAgent)
	if fc.FetchMode != "" {
		c.FetchMode = FetchMode(strings.ToLower(strings.TrimSpace(fc.FetchMode)))
	}
	if fc.FetchTimeoutSeconds > 0 {
		c.FetchTimeout = time.Duration(fc.FetchTimeoutSeconds) * time.Second
	}
	if fc.FetchAttempts > 0 {
		c.FetchAttempts = fc.FetchAttempts
	}
	if fc.FetchBackoffSeconds > 0 {
		c.FetchBackoff = time.Duration(fc.FetchBackoffSeconds) * time.Second
	}
	if fc.ConnectTimeoutSeconds > 0 {
		c.ConnectTimeout = time.Duration(fc.ConnectTimeoutSeconds) * time.Second
	}
	setString(&c.ArtifactPath, fc.ArtifactPath)
	setString(&c.CollectionName, fc.CollectionName)
	setString(&c.ElementType, fc.ElementType)
	setString(&c.ProjectRef, fc.ProjectRef)
	setString(&c.FormatDir, fc.FormatDir)
	if len(fc.FormatCommand) > 0 {
		c.FormatCommand = fc.FormatCommand
	}
	setString(&c.PromptPath, fc.PromptPath)
	setString(&c.Model, fc.Model)
	setString(&c.APIBaseURL, fc.APIBaseURL)
	if fc.ModelTimeoutSeconds > 0 {
		c.ModelTimeout = time.Duration(fc.ModelTimeoutSeconds) * time.Second
	}
	if fc.ModelRequestsPerSecond > 0 {
		c.ModelRequestsPerSecond = fc.ModelRequestsPerSecond
	}
}

// ApplyEnv overlays model settings from the environment. lookup is usually
// os.LookupEnv; tests pass a map-backed function instead.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvModel); ok {
		setString(&c.Model, v)
	}
	if v, ok := lookup(EnvAPIKey); ok {
		c.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBaseURL); ok {
		setString(&c.APIBaseURL, v)
	}
}

// Validate checks the configuration. requireCredential is false for commands
// that never contact the model backend.
func (c *Config) Validate(requireCredential bool) error {
	if requireCredential && strings.TrimSpace(c.APIKey) == "" {
		return errors.New(errors.ErrCodeConfiguration, EnvAPIKey+" not set")
	}

	required := map[string]string{
		"release notes URL": c.ReleaseNotesURL,
		"artifact path":     c.ArtifactPath,
		"collection name":   c.CollectionName,
		"element type":      c.ElementType,
		"project reference": c.ProjectRef,
	}
	if requireCredential {
		required["prompt path"] = c.PromptPath
		required["model"] = c.Model
		required["API base URL"] = c.APIBaseURL
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return errors.New(errors.ErrCodeConfiguration, name+" is empty")
		}
	}

	if c.FetchMode.IsUnknown() {
		return errors.New(errors.ErrCodeConfiguration, fmt.Sprintf("unknown fetch mode %q", c.FetchMode))
	}
	if c.FetchAttempts <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "fetch attempts must be positive")
	}
	if c.FetchTimeout <= 0 || c.ModelTimeout <= 0 || c.ConnectTimeout <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "timeouts must be positive")
	}
	if c.ModelRequestsPerSecond <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "model requests per second must be positive")
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
