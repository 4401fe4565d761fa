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

package client

import (
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/chkk-io/gke-release-sync/pkg/errors"
)

// Interface is an alias for kubernetes.Interface so tests can pass a fake clientset.
type Interface = kubernetes.Interface

var (
	clientOnce   sync.Once
	cachedClient Interface
	cachedConfig *rest.Config
	clientErr    error
)

// GetKubeClient returns a process-wide client built with automatic kubeconfig
// discovery. The first call decides the outcome for all later calls.
func GetKubeClient() (Interface, *rest.Config, error) {
	clientOnce.Do(func() {
		cachedClient, cachedConfig, clientErr = BuildKubeClient("")
	})
	return cachedClient, cachedConfig, clientErr
}

// BuildKubeClient creates a client from kubeconfig, bypassing the shared
// instance. An empty path is resolved as KUBECONFIG, then ~/.kube/config,
// then in-cluster service account credentials.
func BuildKubeClient(kubeconfig string) (Interface, *rest.Config, error) {
	path := resolveKubeconfig(kubeconfig, os.Getenv, homedir.HomeDir())

	var (
		config *rest.Config
		err    error
	)
	if path == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to get in-cluster config", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, nil, errors.WrapWithContext(errors.ErrCodeConfiguration, "failed to build kube config", err,
				map[string]any{"kubeconfig": path})
		}
	}

	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to create kubernetes client", err)
	}
	return cs, config, nil
}

// resolveKubeconfig returns the kubeconfig path to load, or "" for in-cluster.
func resolveKubeconfig(explicit string, getenv func(string) string, home string) string {
	if explicit != "" {
		return explicit
	}
	if env := getenv("KUBECONFIG"); env != "" {
		return env
	}
	if home == "" {
		return ""
	}
	p := filepath.Join(home, ".kube", "config")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
