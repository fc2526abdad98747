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

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/GoogleContainerTools/nixpacks/cmd/nixpacks/app/flags"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/builder/docker"
)

type buildFlags struct {
	commonFlags

	opts          docker.DockerBuilderOptions
	quiet         flags.OptionalBool
	inlineCache   flags.OptionalBool
	currentDir    flags.OptionalBool
	fireAndForget bool
}

// NewCmdBuild describes the CLI command to build the image of an app.
func NewCmdBuild() *cobra.Command {
	f := &buildFlags{}

	return NewCmd("build PATH").
		WithDescription("Build the image of an app").
		WithLongDescription("Generate the build plan of an app, render it as a Dockerfile and build it with docker.").
		WithExample("Build the app in the current directory", "build . --name my-app").
		WithExample("Print the Dockerfile without building it", "build . --dockerfile").
		WithExample("Write the build context to a directory", "build . --out ./context").
		WithExample("Build for arm64 on a remote daemon", "build . --name my-app --platform linux/arm64 --docker-host ssh://builder").
		WithCommonFlags(&f.commonFlags).
		WithFlags(func(fs *pflag.FlagSet) {
			fs.StringVar(&f.opts.Name, "name", "", "Name of the image, random when empty")
			fs.StringVarP(&f.opts.OutDir, "out", "o", "", "Write the build context and the Dockerfile to this directory instead of building")
			fs.BoolVar(&f.opts.PrintDockerfile, "dockerfile", false, "Print the Dockerfile instead of building")
			fs.StringArrayVarP(&f.opts.Tags, "tag", "t", nil, "Additional tag of the image, repeatable")
			fs.StringArrayVarP(&f.opts.Labels, "label", "l", nil, "Label of the image as KEY=VALUE, repeatable")
			fs.VarPF(&f.quiet, "quiet", "q", "Only print the image ID. Defaults to true unless --verbose").NoOptDefVal = "true"
			fs.StringVar(&f.opts.CacheKey, "cache-key", "", "Key of the cache mounts, the image name when empty")
			fs.BoolVar(&f.opts.NoCache, "no-cache", false, "Build without any cache")
			fs.VarPF(&f.inlineCache, "inline-cache", "", "Embed cache metadata in the image (default true)").NoOptDefVal = "true"
			fs.StringVar(&f.opts.CacheFrom, "cache-from", "", "Image to use as a cache source")
			fs.StringVar(&f.opts.IncrementalCacheImage, "incremental-cache-image", "", "Image to use as an incremental cache source")
			fs.StringArrayVar(&f.opts.Platform, "platform", nil, "Target platform, repeatable")
			fs.VarPF(&f.currentDir, "current-dir", "", "Use the app directory as the build context (default true)").NoOptDefVal = "true"
			fs.BoolVar(&f.opts.NoErrorWithoutStart, "no-error-without-start", false, "Build even when there is no start command")
			fs.StringVar(&f.opts.CPUQuota, "cpu-quota", "", "CPU quota of the build, in microseconds")
			fs.StringVar(&f.opts.Memory, "memory", "", "Memory limit of the build, e.g. 2g")
			fs.BoolVar(&f.opts.Verbose, "verbose", false, "Print the full output of docker")
			fs.StringVar(&f.opts.DockerHost, "docker-host", "", "Docker daemon to build on")
			fs.StringVar(&f.opts.DockerTLSVerify, "docker-tls-verify", "", "Verify the TLS certificate of the docker daemon")
			fs.StringVar(&f.opts.DockerCertPath, "docker-cert-path", "", "Directory of the TLS material of the docker daemon")
			fs.BoolVar(&f.fireAndForget, "fire-and-forget", false, "Do not fail when the image build fails")
		}).
		ExactArgs(1, func(ctx context.Context, out io.Writer, args []string) error {
			return doBuild(ctx, out, args[0], f)
		})
}

func doBuild(ctx context.Context, out io.Writer, path string, f *buildFlags) error {
	env, err := f.environment()
	if err != nil {
		return err
	}

	opts := f.opts
	opts.Quiet = f.quiet.Value()
	opts.InlineCache = f.inlineCache.Value()
	opts.CurrentDir = f.currentDir.Value()

	return nixpacks.Build(ctx, path, nixpacks.BuildOptions{
		DockerBuilderOptions: opts,
		Env:                  env,
		ConfigFile:           f.configFile,
		FireAndForget:        f.fireAndForget,
		Out:                  out,
	})
}
