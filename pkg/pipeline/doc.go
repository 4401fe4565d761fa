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

// Package pipeline wires the sync steps together.
//
// A run reads the checkpoint from the data artifact, fetches the release
// notes page, extracts the sections ahead of the checkpoint, asks the model
// to normalise their stable-channel versions, decodes the answer and merges
// it into the artifact. Each step either hands its output to the next or
// ends the run:
//
//	no new sections         -> StatusNoChange
//	model returned nothing  -> error (ErrCodeModelOutput)
//	zero decoded entries    -> StatusNoChange
//	merge left text as is   -> StatusNoChange
//	artifact rewritten      -> StatusChanged
//
// Run always returns a Result so a SyncReport and metrics can be written
// for failed runs too.
package pipeline
