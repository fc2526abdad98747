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

package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	nixerrors "github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/errors"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/providers"
)

// DetectedProviders stands for the detected providers in an explicit list
// of providers, e.g. `["...", "procfile"]`.
const DetectedProviders = "..."

// GeneratePlanOptions are the inputs of a plan besides the app and its environment.
type GeneratePlanOptions struct {
	// Plan is merged last, over everything else.
	Plan *plan.BuildPlan
	// ConfigFile overrides the nixpacks.toml lookup in the app root.
	ConfigFile string
}

// Generator turns an app into a BuildPlan using a set of providers.
type Generator struct {
	providers []providers.Provider
}

func NewGenerator(all ...providers.Provider) *Generator {
	return &Generator{providers: all}
}

// request holds what every generation step reads.
type request struct {
	app     *app.App
	env     *app.Environment
	config  *plan.BuildPlan
	envPlan *plan.BuildPlan
	opts    GeneratePlanOptions
}

func (g *Generator) newRequest(path string, envVars []string, opts GeneratePlanOptions) (*request, error) {
	a, err := app.NewApp(path)
	if err != nil {
		return nil, nixerrors.DetectionErr(err)
	}

	env, err := app.NewEnvironment(envVars)
	if err != nil {
		return nil, nixerrors.PlanParseErr(err)
	}

	config, err := ReadConfig(a, env, opts.ConfigFile)
	if err != nil {
		return nil, nixerrors.PlanParseErr(err)
	}

	return &request{
		app:     a,
		env:     env,
		config:  config,
		envPlan: plan.FromEnvironment(env.Variables),
		opts:    opts,
	}, nil
}

// GetPlanProviders returns the names of the providers the plan of the app
// would be generated with.
func (g *Generator) GetPlanProviders(ctx context.Context, path string, envVars []string, opts GeneratePlanOptions) ([]string, error) {
	ctx = log.WithEventContext(ctx, constants.Detect, "providers")

	req, err := g.newRequest(path, envVars, opts)
	if err != nil {
		return nil, err
	}

	selected, err := g.selectProviders(ctx, req)
	if err != nil {
		return nil, err
	}
	return providers.Names(selected), nil
}

// GenerateBuildPlan detects the providers of the app and merges, in
// increasing priority, their plans, the config file, the NIXPACKS_*
// environment variables and opts.Plan.
func (g *Generator) GenerateBuildPlan(ctx context.Context, path string, envVars []string, opts GeneratePlanOptions) (*plan.BuildPlan, error) {
	ctx = log.WithEventContext(ctx, constants.Plan, "generate")

	req, err := g.newRequest(path, envVars, opts)
	if err != nil {
		return nil, err
	}

	selected, err := g.selectProviders(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		log.Entry(ctx).Warnf("No provider matched %s", req.app.Source)
	}

	var plans []*plan.BuildPlan
	for _, p := range selected {
		providerPlan, err := p.GetBuildPlan(req.app, req.env)
		if err != nil {
			return nil, nixerrors.DetectionErr(fmt.Errorf("provider %s: %w", p.Name(), err))
		}
		log.Entry(ctx).Debugf("Provider %s planned %d phases", p.Name(), phaseCount(providerPlan))
		plans = append(plans, providerPlan)
	}
	plans = append(plans, req.config, req.envPlan, opts.Plan)

	merged, err := plan.Merge(plans...)
	if err != nil {
		return nil, nixerrors.PlanGenerationErr(err)
	}

	merged.Providers = providers.Names(selected)
	for _, key := range req.env.Keys() {
		value, _ := req.env.Get(key)
		merged.SetVariable(key, value)
	}

	if _, err := merged.OrderedPhases(); err != nil {
		return nil, nixerrors.PlanGenerationErr(err)
	}

	return merged, nil
}

// selectProviders returns the providers listed by the config file or the
// caller plan, or the detected providers when none are listed.
func (g *Generator) selectProviders(ctx context.Context, req *request) ([]providers.Provider, error) {
	var explicit []string
	for _, p := range []*plan.BuildPlan{req.config, req.opts.Plan} {
		if p != nil && p.Providers != nil {
			explicit = p.Providers
		}
	}

	if explicit == nil {
		return g.detect(ctx, req)
	}

	log.Entry(ctx).Debugf("Using providers %s", strings.Join(explicit, ", "))

	var selected []providers.Provider
	add := func(p providers.Provider) {
		if providers.Find(selected, p.Name()) == nil {
			selected = append(selected, p)
		}
	}

	for _, name := range explicit {
		if name == DetectedProviders {
			detected, err := g.detect(ctx, req)
			if err != nil {
				return nil, err
			}
			for _, p := range detected {
				add(p)
			}
			continue
		}

		p := providers.Find(g.providers, name)
		if p == nil {
			return nil, nixerrors.DetectionErr(fmt.Errorf("unknown provider %q", name))
		}
		add(p)
	}

	return selected, nil
}

func (g *Generator) detect(ctx context.Context, req *request) ([]providers.Provider, error) {
	var detected []providers.Provider
	for _, p := range g.providers {
		matched, err := p.Detect(req.app, req.env)
		if err != nil {
			return nil, nixerrors.DetectionErr(fmt.Errorf("provider %s: %w", p.Name(), err))
		}
		if matched {
			log.Entry(ctx).Debugf("Detected provider %s", p.Name())
			detected = append(detected, p)
		}
	}
	return detected, nil
}

func phaseCount(p *plan.BuildPlan) int {
	if p == nil {
		return 0
	}
	return len(p.Phases)
}
