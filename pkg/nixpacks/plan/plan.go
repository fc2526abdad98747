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

package plan

import (
	"fmt"
	"strings"

	"github.com/imdario/mergo"
)

// BuildPlan is an ordered set of phases and an optional start phase.
type BuildPlan struct {
	// Providers lists the providers the plan was generated with. When a
	// caller sets it, detection is restricted to those providers.
	Providers []string
	// BuildImage is the base image phases run in.
	BuildImage string
	// Variables are exposed to every phase as build args and environment.
	Variables map[string]string

	// Phases are kept in insertion order. Names are unique.
	Phases []*Phase
	Start  *StartPhase
}

func NewBuildPlan() *BuildPlan {
	return &BuildPlan{}
}

// AddPhase adds a copy of phase to the plan, merging it into the existing
// phase of the same name if there is one.
func (p *BuildPlan) AddPhase(phase *Phase) {
	if existing := p.GetPhase(phase.Name); existing != nil {
		existing.Merge(phase)
		return
	}
	p.Phases = append(p.Phases, phase.DeepCopy())
}

// GetPhase returns the phase with the given name, or nil.
func (p *BuildPlan) GetPhase(name string) *Phase {
	for _, phase := range p.Phases {
		if phase.Name == name {
			return phase
		}
	}
	return nil
}

func (p *BuildPlan) SetStartPhase(start *StartPhase) {
	p.Start = start.DeepCopy()
}

// StartCmd returns the start command, or "" when there is none.
func (p *BuildPlan) StartCmd() string {
	if p.Start == nil {
		return ""
	}
	return p.Start.Cmd
}

func (p *BuildPlan) SetVariable(key, value string) {
	if p.Variables == nil {
		p.Variables = map[string]string{}
	}
	p.Variables[key] = value
}

// DeepCopy returns a copy of p sharing no state with it.
func (p *BuildPlan) DeepCopy() *BuildPlan {
	if p == nil {
		return nil
	}
	c := &BuildPlan{
		Providers:  clone(p.Providers),
		BuildImage: p.BuildImage,
		Start:      p.Start.DeepCopy(),
	}
	if p.Variables != nil {
		c.Variables = make(map[string]string, len(p.Variables))
		for k, v := range p.Variables {
			c.Variables[k] = v
		}
	}
	if p.Phases != nil {
		c.Phases = make([]*Phase, 0, len(p.Phases))
		for _, phase := range p.Phases {
			c.Phases = append(c.Phases, phase.DeepCopy())
		}
	}
	return c
}

// Merge combines plans in increasing priority. Phases with the same name are
// merged with Phase.Merge, the last start phase wins, providers are unioned,
// variables and the build image are overridden. Inputs are not modified.
func Merge(plans ...*BuildPlan) (*BuildPlan, error) {
	merged := NewBuildPlan()
	for _, p := range plans {
		if p == nil {
			continue
		}

		merged.Providers = union(merged.Providers, p.Providers)
		if p.BuildImage != "" {
			merged.BuildImage = p.BuildImage
		}
		if p.Variables != nil {
			if merged.Variables == nil {
				merged.Variables = map[string]string{}
			}
			if err := mergo.Merge(&merged.Variables, p.Variables, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("merging variables: %w", err)
			}
		}
		if p.Phases != nil && merged.Phases == nil {
			merged.Phases = []*Phase{}
		}
		for _, phase := range p.Phases {
			merged.AddPhase(phase)
		}
		if p.Start != nil {
			merged.Start = p.Start.DeepCopy()
		}
	}
	return merged, nil
}

// OrderedPhases returns the phases sorted so that every phase comes after the
// phases it depends on. Ties keep insertion order and dependencies on phases
// that are not in the plan are ignored.
func (p *BuildPlan) OrderedPhases() ([]*Phase, error) {
	done := map[string]bool{}
	remaining := append([]*Phase(nil), p.Phases...)
	var ordered []*Phase

	for len(remaining) > 0 {
		next := -1
		for i, phase := range remaining {
			if p.ready(phase, done) {
				next = i
				break
			}
		}

		if next == -1 {
			var names []string
			for _, phase := range remaining {
				names = append(names, phase.Name)
			}
			return nil, fmt.Errorf("circular dependency between phases: %s", strings.Join(names, ", "))
		}

		done[remaining[next].Name] = true
		ordered = append(ordered, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}

	return ordered, nil
}

func (p *BuildPlan) ready(phase *Phase, done map[string]bool) bool {
	for _, dep := range phase.DependsOn {
		if p.GetPhase(dep) != nil && !done[dep] {
			return false
		}
	}
	return true
}
