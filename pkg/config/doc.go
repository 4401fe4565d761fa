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

// Package config defines the explicit run configuration for gkesync.
//
// A Config starts from built-in defaults (NewConfig), is optionally overlaid
// from a YAML or TOML file (LoadFile), then from the environment (ApplyEnv),
// and finally from CLI flags. Validate reports problems as CONFIGURATION
// errors before any network activity happens.
//
//	cfg := config.NewConfig()
//	if err := cfg.LoadFile("gkesync.toml"); err != nil { ... }
//	cfg.ApplyEnv(os.LookupEnv)
//	if err := cfg.Validate(true); err != nil { ... }
package config
