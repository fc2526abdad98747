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

package procfile

import (
	"fmt"
	"strings"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
)

const (
	web     = "web"
	worker  = "worker"
	release = "release"
)

// Provider plans apps that declare their processes in a Procfile.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (*Provider) Name() string {
	return "procfile"
}

func (*Provider) Detect(a *app.App, _ *app.Environment) (bool, error) {
	return a.IncludesFile(constants.Procfile), nil
}

// GetBuildPlan starts the `web` process, or `worker` when there is no web
// process. A `release` process runs at the end of the build phase.
func (*Provider) GetBuildPlan(a *app.App, _ *app.Environment) (*plan.BuildPlan, error) {
	content, err := a.ReadFile(constants.Procfile)
	if err != nil {
		return nil, err
	}

	processes, err := Parse(content)
	if err != nil {
		return nil, err
	}

	p := plan.NewBuildPlan()
	if cmd, ok := processes[release]; ok {
		p.AddPhase(plan.Build(cmd))
	}

	for _, name := range []string{web, worker} {
		if cmd, ok := processes[name]; ok {
			p.SetStartPhase(plan.NewStartPhase(cmd))
			break
		}
	}

	return p, nil
}

// Parse reads `name: command` lines. Blank lines and comments are skipped.
func Parse(content string) (map[string]string, error) {
	processes := map[string]string{}
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, cmd, found := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		cmd = strings.TrimSpace(cmd)
		if !found || name == "" || cmd == "" {
			return nil, fmt.Errorf("Procfile line %d: expected `name: command`, got %q", i+1, line)
		}
		processes[name] = cmd
	}
	return processes, nil
}
