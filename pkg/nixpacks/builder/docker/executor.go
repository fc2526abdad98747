/*
Copyright 2026 The Skaffold Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package docker

import (
	"context"
	"io"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
)

// BuildRequest is what an Executor needs to build one image.
type BuildRequest struct {
	// Dir is the build context.
	Dir        string
	Dockerfile string
	Name       string
	// Variables are passed as build args.
	Variables map[string]string
}

// Executor builds images. Executors are acquired and released by WithExecutor.
type Executor interface {
	Build(ctx context.Context, out io.Writer, req BuildRequest) error
	Close() error
}

// For testing
var (
	NewExecutor = newCLIExecutor
)

// WithExecutor acquires an executor, runs fn with it and releases the
// executor whatever fn returns. It blocks until fn returns.
func WithExecutor(ctx context.Context, opts DockerBuilderOptions, fn func(Executor) error) error {
	e, err := NewExecutor(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Entry(ctx).Warnf("Releasing docker executor: %s", err)
		}
	}()

	return fn(e)
}
