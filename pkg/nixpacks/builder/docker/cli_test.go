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
	"errors"
	"testing"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
	"github.com/GoogleContainerTools/nixpacks/testutil"
)

func TestBuildArgs(t *testing.T) {
	req := BuildRequest{
		Dir:        "/ctx",
		Dockerfile: "/tmp/Dockerfile",
		Name:       "app",
		Variables:  map[string]string{"PORT": "3000", "NODE_ENV": "production"},
	}

	tests := []struct {
		description string
		opts        DockerBuilderOptions
		expected    []string
	}{
		{
			description: "defaults",
			expected: []string{
				"build", "/ctx", "--file", "/tmp/Dockerfile", "-t", "app",
				"--build-arg", "BUILDKIT_INLINE_CACHE=1",
				"--quiet",
				"--build-arg", "NODE_ENV=production", "--build-arg", "PORT=3000",
			},
		},
		{
			description: "everything",
			opts: DockerBuilderOptions{
				Tags:                  []string{"app:v1", "registry.example.com/app:v1"},
				Labels:                []string{"team=web", "tier=frontend"},
				Platform:              []string{"linux/amd64", "linux/aarch64"},
				CacheFrom:             "app:cache",
				IncrementalCacheImage: "app:incremental",
				InlineCache:           boolPtr(false),
				CPUQuota:              "50000",
				Memory:                "1g",
				Verbose:               true,
			},
			expected: []string{
				"buildx", "build", "/ctx", "--file", "/tmp/Dockerfile", "-t", "app",
				"-t", "app:v1", "-t", "registry.example.com/app:v1",
				"--label", "team=web", "--label", "tier=frontend",
				"--platform", "linux/amd64,linux/arm64",
				"--cache-from", "app:cache", "--cache-from", "app:incremental",
				"--cpu-quota", "50000", "--memory", "1g",
				"--progress=plain",
				"--build-arg", "NODE_ENV=production", "--build-arg", "PORT=3000",
			},
		},
		{
			description: "no cache wins over cache options",
			opts: DockerBuilderOptions{
				NoCache:               true,
				CacheFrom:             "app:cache",
				IncrementalCacheImage: "app:incremental",
				InlineCache:           boolPtr(true),
				Quiet:                 boolPtr(false),
			},
			expected: []string{
				"build", "/ctx", "--file", "/tmp/Dockerfile", "-t", "app",
				"--no-cache",
				"--build-arg", "NODE_ENV=production", "--build-arg", "PORT=3000",
			},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			t.CheckDeepEqual(test.expected, buildArgs(test.opts, req))
		})
	}
}

func TestCLIExecutorBuild(t *testing.T) {
	testutil.Run(t, "without daemon", func(t *testutil.T) {
		t.Override(&NewDaemonClient, func(DockerBuilderOptions) (daemonAPI, error) {
			return nil, errors.New("no docker daemon")
		})
		t.Override(&util.OSEnviron, func() []string { return []string{"PATH=/usr/bin"} })
		t.Override(&util.DefaultExecCommand, testutil.CmdRunEnv(
			"docker build /ctx --file /ctx/.nixpacks/Dockerfile -t app --no-cache",
			[]string{"PATH=/usr/bin", "DOCKER_BUILDKIT=1", "DOCKER_HOST=tcp://docker:2376", "DOCKER_TLS_VERIFY=1"},
		))

		opts := DockerBuilderOptions{NoCache: true, Quiet: boolPtr(false), DockerHost: "tcp://docker:2376", DockerTLSVerify: "1"}
		e, err := newCLIExecutor(context.Background(), opts)
		t.CheckNoError(err)

		err = e.Build(context.Background(), &bytes.Buffer{}, BuildRequest{Dir: "/ctx", Dockerfile: "/ctx/.nixpacks/Dockerfile", Name: "app"})

		t.CheckNoError(err)
		t.CheckNoError(e.Close())
	})

	testutil.Run(t, "with daemon", func(t *testutil.T) {
		fakeDaemon := (&testutil.FakeAPIClient{APIVersion: "1.45"}).Add("app:cache", "sha256:cache")
		t.Override(&NewDaemonClient, func(DockerBuilderOptions) (daemonAPI, error) {
			return fakeDaemon, nil
		})
		t.Override(&util.DefaultExecCommand, testutil.CmdRunWithOutput(
			"docker build /ctx --file /ctx/Dockerfile -t app --cache-from app:cache --cache-from app:incremental --build-arg BUILDKIT_INLINE_CACHE=1 --quiet",
			"sha256:built\n",
		))

		opts := DockerBuilderOptions{CacheFrom: "app:cache", IncrementalCacheImage: "app:incremental"}
		e, err := newCLIExecutor(context.Background(), opts)
		t.CheckNoError(err)

		var out bytes.Buffer
		err = e.Build(context.Background(), &out, BuildRequest{Dir: "/ctx", Dockerfile: "/ctx/Dockerfile", Name: "app"})

		t.CheckNoError(err)
		t.CheckDeepEqual([]string{"app:incremental"}, fakeDaemon.Pulled)
		t.CheckDeepEqual("Pulled app:incremental\nsha256:built\n", out.String())
		t.CheckNoError(e.Close())
		t.CheckTrue(fakeDaemon.Closed)
	})

	testutil.Run(t, "preflight failures are not fatal", func(t *testutil.T) {
		t.Override(&NewDaemonClient, func(DockerBuilderOptions) (daemonAPI, error) {
			return &testutil.FakeAPIClient{ErrPing: true}, nil
		})
		t.Override(&util.DefaultExecCommand, testutil.CmdRun("docker build /ctx --file /ctx/Dockerfile -t app --build-arg BUILDKIT_INLINE_CACHE=1 --quiet"))

		e, err := newCLIExecutor(context.Background(), DockerBuilderOptions{})
		t.CheckNoError(err)

		err = e.Build(context.Background(), &bytes.Buffer{}, BuildRequest{Dir: "/ctx", Dockerfile: "/ctx/Dockerfile", Name: "app"})

		t.CheckNoError(err)
	})

	testutil.Run(t, "other platforms", func(t *testutil.T) {
		t.Override(&NewDaemonClient, func(DockerBuilderOptions) (daemonAPI, error) {
			return nil, errors.New("no docker daemon")
		})
		t.Override(&util.DefaultExecCommand, testutil.
			CmdRunOut("docker buildx version", "github.com/docker/buildx v0.17.1 257815a\n").
			AndRun("docker buildx build /ctx --file /ctx/Dockerfile -t app --platform linux/arm64 --build-arg BUILDKIT_INLINE_CACHE=1 --quiet"))

		e, err := newCLIExecutor(context.Background(), DockerBuilderOptions{Platform: []string{"linux/arm64"}})
		t.CheckNoError(err)

		err = e.Build(context.Background(), &bytes.Buffer{}, BuildRequest{Dir: "/ctx", Dockerfile: "/ctx/Dockerfile", Name: "app"})

		t.CheckNoError(err)
	})

	testutil.Run(t, "other platforms without buildx", func(t *testutil.T) {
		t.Override(&NewDaemonClient, func(DockerBuilderOptions) (daemonAPI, error) {
			return nil, errors.New("no docker daemon")
		})
		t.Override(&util.DefaultExecCommand, testutil.CmdRunOutErr(
			"docker buildx version",
			"",
			errors.New("docker: 'buildx' is not a docker command"),
		))

		e, err := newCLIExecutor(context.Background(), DockerBuilderOptions{Platform: []string{"linux/arm64"}})
		t.CheckNoError(err)

		err = e.Build(context.Background(), &bytes.Buffer{}, BuildRequest{Dir: "/ctx", Dockerfile: "/ctx/Dockerfile", Name: "app"})

		t.CheckErrorContains("building for platform linux/arm64 requires docker buildx", err)
	})

	testutil.Run(t, "docker failure", func(t *testutil.T) {
		t.Override(&NewDaemonClient, func(DockerBuilderOptions) (daemonAPI, error) {
			return nil, errors.New("no docker daemon")
		})
		t.Override(&util.DefaultExecCommand, testutil.CmdRunErr(
			"docker build /ctx --file /ctx/Dockerfile -t app --build-arg BUILDKIT_INLINE_CACHE=1 --quiet",
			errors.New("exit status 1"),
		))

		e, err := newCLIExecutor(context.Background(), DockerBuilderOptions{})
		t.CheckNoError(err)

		err = e.Build(context.Background(), &bytes.Buffer{}, BuildRequest{Dir: "/ctx", Dockerfile: "/ctx/Dockerfile", Name: "app"})

		t.CheckErrorContains("running docker build: exit status 1", err)
	})
}

func TestTryExecFormatErr(t *testing.T) {
	testutil.Run(t, "exec format error", func(t *testutil.T) {
		cause := errors.New("running docker build: exit status 1")
		stderr := *bytes.NewBufferString("exec /bin/bash: exec format error")

		err := tryExecFormatErr(cause, stderr)

		t.CheckErrorContains("--platform", err)
		t.CheckTrue(errors.Is(err, cause))
	})

	testutil.Run(t, "other error", func(t *testutil.T) {
		cause := errors.New("running docker build: exit status 1")

		err := tryExecFormatErr(cause, *bytes.NewBufferString("no space left on device"))

		t.CheckTrue(err == cause)
	})
}
