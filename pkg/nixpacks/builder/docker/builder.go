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
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/segmentio/textio"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	nixerrors "github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/errors"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
)

// ImageBuilder turns a plan into a Dockerfile and builds it with docker.
type ImageBuilder struct {
	opts     DockerBuilderOptions
	resolver nix.PackageResolver
}

func NewImageBuilder(opts DockerBuilderOptions) *ImageBuilder {
	return &ImageBuilder{
		opts:     opts,
		resolver: nix.DefaultResolver,
	}
}

// WithPackageResolver sets how the packages of the phases are installed.
func (b *ImageBuilder) WithPackageResolver(resolver nix.PackageResolver) *ImageBuilder {
	b.resolver = resolver
	return b
}

// CreateImage builds the image of the app described by p. With PrintDockerfile
// the Dockerfile is written to out, with OutDir the build context is written
// to disk, and nothing is built in both cases.
func (b *ImageBuilder) CreateImage(ctx context.Context, out io.Writer, p *plan.BuildPlan, a *app.App) error {
	ctx = log.WithEventContext(ctx, constants.Build, "image")

	if err := b.opts.Validate(); err != nil {
		return nixerrors.BuildExecutionErr(err)
	}

	if p.StartCmd() == "" && !b.opts.NoErrorWithoutStart {
		return nixerrors.PlanGenerationErr(nixerrors.ErrNoStartCommand)
	}

	opts := b.opts
	if opts.Name == "" {
		opts.Name = uuid.NewString()
	}

	dockerfile, err := GenerateDockerfile(p, opts, b.resolver)
	if err != nil {
		return nixerrors.PlanGenerationErr(err)
	}

	if opts.PrintDockerfile {
		if _, err := fmt.Fprint(out, dockerfile); err != nil {
			return nixerrors.BuildExecutionErr(err)
		}
		return nil
	}

	if opts.OutDir != "" {
		return b.writeOutDir(ctx, a, dockerfile)
	}

	return b.build(ctx, out, opts, p, a, dockerfile)
}

func (b *ImageBuilder) writeOutDir(ctx context.Context, a *app.App, dockerfile string) error {
	outDir, err := util.ExpandHomePath(b.opts.OutDir)
	if err != nil {
		return nixerrors.BuildExecutionErr(err)
	}

	path, err := writeOutDir(ctx, a.Source, outDir, dockerfile)
	if err != nil {
		return nixerrors.BuildExecutionErr(err)
	}

	log.Entry(ctx).Infof("Wrote the build context to %s", path)
	return nil
}

func (b *ImageBuilder) build(ctx context.Context, out io.Writer, opts DockerBuilderOptions, p *plan.BuildPlan, a *app.App, dockerfile string) error {
	bc, err := newBuildContext(ctx, a.Source, dockerfile, opts.UseCurrentDir())
	if err != nil {
		return nixerrors.BuildExecutionErr(err)
	}
	defer func() {
		if err := bc.Close(); err != nil {
			log.Entry(ctx).Warnf("Removing build context: %s", err)
		}
	}()

	log.Entry(ctx).Infof("Building %s from %s", opts.Name, bc.Dir)

	pw := textio.NewPrefixWriter(out, " - ")
	defer pw.Flush()

	err = WithExecutor(ctx, opts, func(e Executor) error {
		return e.Build(ctx, pw, BuildRequest{
			Dir:        bc.Dir,
			Dockerfile: bc.Dockerfile,
			Name:       opts.Name,
			Variables:  p.Variables,
		})
	})
	if err != nil {
		return nixerrors.BuildExecutionErr(err)
	}

	log.Entry(ctx).Infof("Successfully built %s", opts.Name)
	return nil
}
