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

package providers

import (
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
)

// Provider detects a kind of app and plans its build.
type Provider interface {
	// Name identifies the provider in plans and on the command line.
	Name() string
	// Detect reports whether the provider applies to the app.
	Detect(a *app.App, env *app.Environment) (bool, error)
	// GetBuildPlan returns the plan for an app the provider detected.
	GetBuildPlan(a *app.App, env *app.Environment) (*plan.BuildPlan, error)
}

// Names returns the names of providers, in order.
func Names(providers []Provider) []string {
	var names []string
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}

// Find returns the provider with the given name, or nil.
func Find(providers []Provider, name string) Provider {
	for _, p := range providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}
