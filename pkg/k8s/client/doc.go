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

// Package client builds the Kubernetes client used when a run report is
// written to a ConfigMap (--report cm://namespace/name).
//
// GetKubeClient shares one client per process. BuildKubeClient honours an
// explicit --kubeconfig path and otherwise discovers configuration from
// KUBECONFIG, ~/.kube/config, or the in-cluster service account, which is
// how the tool authenticates when it runs as a CronJob.
package client
