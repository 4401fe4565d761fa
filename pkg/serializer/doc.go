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

// Package serializer writes gkesync documents (run reports, section listings)
// as JSON, YAML or a rendered table.
//
// Destinations are picked from a target string with NewOutput:
//
//	out, err := serializer.NewOutput(serializer.FormatYAML, "cm://gke-sync/last-run")
//	if err != nil {
//		return err
//	}
//	if c, ok := out.(serializer.Closer); ok {
//		defer c.Close()
//	}
//	return out.Serialize(ctx, report)
//
// An empty target or "-" writes to stdout, cm://namespace/name applies a
// ConfigMap through client-go server-side apply, and anything else is a
// file path.
//
// Table output is rendered with github.com/jedib0t/go-pretty. Documents that
// implement Tabular control their own columns; everything else is flattened
// into sorted FIELD/VALUE rows.
package serializer
