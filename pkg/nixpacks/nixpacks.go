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

// Package nixpacks exposes the operations of the command line as functions:
// detecting the providers of an app, printing its plan and building its image.
package nixpacks

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/builder/docker"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	nixerrors "github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/errors"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/generator"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/providers"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/providers/procfile"
)

// DefaultProviders returns the providers apps are detected with, in priority order.
func DefaultProviders() []providers.Provider {
	return []providers.Provider{
		procfile.New(),
	}
}

// for testing
var newGenerator = func() *generator.Generator {
	return generator.NewGenerator(DefaultProviders()...)
}

// DetectOptions configures Detect.
type DetectOptions struct {
	// Env holds KEY=VALUE assignments.
	Env        []string
	ConfigFile string
}

// Detect returns the comma separated names of the providers that apply to
// the app at path.
func Detect(ctx context.Context, path string, opts DetectOptions) (string, error) {
	names, err := newGenerator().GetPlanProviders(ctx, path, opts.Env, generator.GeneratePlanOptions{
		ConfigFile: opts.ConfigFile,
	})
	if err != nil {
		return "", err
	}
	return strings.Join(names, ", "), nil
}

// PlanOptions configures Plan. A nil field leaves the plan untouched, a
// non-nil empty field adds the matching phase without commands or packages.
type PlanOptions struct {
	Env []string
	// JSONPlan is a serialized plan merged under the other options.
	JSONPlan    *string
	InstallCmds []string
	BuildCmds   []string
	StartCmd    *string
	AptPkgs     []string
	NixPkgs     []string
	NixLibs     []string
	ConfigFile  string
	// Format of the returned plan, json when empty.
	Format plan.Format
}

// Plan generates the plan of the app at path and serializes it.
func Plan(ctx context.Context, path string, opts PlanOptions) (string, error) {
	format, err := plan.ParseFormat(string(opts.Format))
	if err != nil {
		return "", nixerrors.PlanParseErr(err)
	}

	callerPlan, err := opts.callerPlan()
	if err != nil {
		return "", err
	}

	p, err := newGenerator().GenerateBuildPlan(ctx, path, opts.Env, generator.GeneratePlanOptions{
		Plan:       callerPlan,
		ConfigFile: opts.ConfigFile,
	})
	if err != nil {
		return "", err
	}

	text, err := p.Serialize(format)
	if err != nil {
		return "", nixerrors.PlanGenerationErr(err)
	}
	return text, nil
}

// callerPlan merges the JSON plan with the plan built from the explicit options.
func (opts PlanOptions) callerPlan() (*plan.BuildPlan, error) {
	var jsonPlan *plan.BuildPlan
	if opts.JSONPlan != nil {
		parsed, err := plan.FromJSON(*opts.JSONPlan)
		if err != nil {
			return nil, nixerrors.PlanParseErr(err)
		}
		jsonPlan = parsed
	}

	merged, err := plan.Merge(jsonPlan, opts.overridePlan())
	if err != nil {
		return nil, nixerrors.PlanGenerationErr(err)
	}
	return merged, nil
}

func (opts PlanOptions) overridePlan() *plan.BuildPlan {
	p := plan.NewBuildPlan()

	if opts.NixPkgs != nil || opts.AptPkgs != nil || opts.NixLibs != nil {
		setup := plan.Setup(nix.NewPkgs(opts.NixPkgs))
		setup.AptPkgs = opts.AptPkgs
		setup.NixLibs = opts.NixLibs
		p.AddPhase(setup)
	}
	if opts.InstallCmds != nil {
		p.AddPhase(plan.Install(opts.InstallCmds...))
	}
	if opts.BuildCmds != nil {
		p.AddPhase(plan.Build(opts.BuildCmds...))
	}
	if opts.StartCmd != nil {
		p.SetStartPhase(plan.NewStartPhase(*opts.StartCmd))
	}

	return p
}

// BuildOptions configures Build.
type BuildOptions struct {
	docker.DockerBuilderOptions

	Env        []string
	ConfigFile string
	// FireAndForget logs a failing image build instead of returning it.
	FireAndForget bool
	// Out receives the Dockerfile or the output of docker, os.Stdout when nil.
	Out io.Writer
}

// Build generates the plan of the app at path and builds its image.
func Build(ctx context.Context, path string, opts BuildOptions) error {
	p, err := newGenerator().GenerateBuildPlan(ctx, path, opts.Env, generator.GeneratePlanOptions{
		ConfigFile: opts.ConfigFile,
	})
	if err != nil {
		return err
	}

	a, err := app.NewApp(path)
	if err != nil {
		return nixerrors.DetectionErr(err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if !opts.PrintDockerfile {
		if err := WriteSummary(out, p); err != nil {
			return nixerrors.BuildExecutionErr(err)
		}
	}

	err = docker.NewImageBuilder(opts.DockerBuilderOptions).CreateImage(ctx, out, p, a)
	if err != nil && opts.FireAndForget && nixerrors.IsPhase(err, nixerrors.BuildExecution) {
		ctx = log.WithEventContext(ctx, constants.Build, "image")
		log.Entry(ctx).Warnf("Ignoring failed build: %s", err)
		return nil
	}
	return err
}
