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
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
)

// cliExecutor builds images with the docker CLI.
type cliExecutor struct {
	opts   DockerBuilderOptions
	daemon daemonAPI
}

func newCLIExecutor(ctx context.Context, opts DockerBuilderOptions) (Executor, error) {
	e := &cliExecutor{opts: opts}

	api, err := NewDaemonClient(opts)
	if err != nil {
		log.Entry(ctx).Warnf("Skipping docker daemon checks: %s", err)
	} else {
		e.daemon = api
	}

	return e, nil
}

func (e *cliExecutor) Build(ctx context.Context, out io.Writer, req BuildRequest) error {
	if e.daemon != nil {
		if err := preflight(ctx, out, e.daemon, e.opts.CacheFromImages()); err != nil {
			log.Entry(ctx).Warnf("Docker daemon checks failed: %s", err)
		}
	}

	if len(e.opts.Platform) > 0 {
		if err := e.checkBuildx(ctx); err != nil {
			return err
		}
	}

	cmd := exec.CommandContext(ctx, "docker", buildArgs(e.opts, req)...)
	cmd.Env = append(util.OSEnviron(), dockerEnv(e.opts)...)
	cmd.Stdout = out

	var errBuffer bytes.Buffer
	cmd.Stderr = io.MultiWriter(out, &errBuffer)

	if err := util.RunCmd(ctx, cmd); err != nil {
		return tryExecFormatErr(fmt.Errorf("running docker build: %w", err), errBuffer)
	}
	return nil
}

func (e *cliExecutor) Close() error {
	if e.daemon == nil {
		return nil
	}
	return e.daemon.Close()
}

// checkBuildx fails when the docker CLI has no buildx plugin to build for other platforms.
func (e *cliExecutor) checkBuildx(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "buildx", "version")
	cmd.Env = append(util.OSEnviron(), dockerEnv(e.opts)...)

	out, err := util.RunCmdOut(ctx, cmd)
	if err != nil {
		return fmt.Errorf("building for platform %s requires docker buildx: %w", strings.Join(e.opts.Platform, ","), err)
	}
	log.Entry(ctx).Debugf("Using %s", strings.TrimSpace(string(out)))
	return nil
}

// buildArgs returns the arguments of `docker build`, or `docker buildx build`
// when target platforms are set.
func buildArgs(opts DockerBuilderOptions, req BuildRequest) []string {
	var args []string
	if len(opts.Platform) > 0 {
		args = append(args, "buildx")
	}
	args = append(args, "build", req.Dir, "--file", req.Dockerfile, "-t", req.Name)

	for _, tag := range opts.Tags {
		args = append(args, "-t", tag)
	}
	for _, label := range opts.Labels {
		args = append(args, "--label", label)
	}
	if len(opts.Platform) > 0 {
		args = append(args, "--platform", strings.Join(opts.NormalizedPlatforms(), ","))
	}

	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	for _, image := range opts.CacheFromImages() {
		args = append(args, "--cache-from", image)
	}
	if opts.UseInlineCache() {
		args = append(args, "--build-arg", "BUILDKIT_INLINE_CACHE=1")
	}

	if opts.CPUQuota != "" {
		args = append(args, "--cpu-quota", opts.CPUQuota)
	}
	if opts.Memory != "" {
		args = append(args, "--memory", opts.Memory)
	}

	if opts.IsQuiet() {
		args = append(args, "--quiet")
	}
	if opts.Verbose {
		args = append(args, "--progress=plain")
	}

	keys := make([]string, 0, len(req.Variables))
	for k := range req.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--build-arg", k+"="+req.Variables[k])
	}

	return args
}

// tryExecFormatErr explains the exec format errors of builds for a foreign platform.
func tryExecFormatErr(err error, stderr bytes.Buffer) error {
	if !strings.Contains(stderr.String(), "exec format error") {
		return err
	}
	return fmt.Errorf("%w: the build image does not match the platform of the docker daemon, set the target platform with --platform", err)
}
