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
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
)

// Kind is the role of a phase, derived from its name.
type Kind string

const (
	KindSetup   = Kind("setup")
	KindInstall = Kind("install")
	KindBuild   = Kind("build")
	KindCustom  = Kind("custom")
)

// Names of the standard phases.
const (
	SetupPhase   = "setup"
	InstallPhase = "install"
	BuildPhase   = "build"
)

// Phase is a named unit of build work. A nil slice means the field was never
// set, an empty slice means it was set to nothing.
type Phase struct {
	Name string

	Cmds      []string
	DependsOn []string

	NixPkgs []nix.Pkg
	NixLibs []string
	AptPkgs []string

	CacheDirectories []string
	Paths            []string
}

// NewPhase creates a phase with the commands and dependencies its kind implies.
func NewPhase(name string) *Phase {
	p := &Phase{
		Name: name,
		Cmds: []string{},
	}

	switch p.Kind() {
	case KindInstall:
		p.DependsOn = []string{SetupPhase}
	case KindBuild:
		p.DependsOn = []string{InstallPhase}
	}

	return p
}

// Setup creates the setup phase installing the given nix packages.
func Setup(pkgs []nix.Pkg) *Phase {
	p := NewPhase(SetupPhase)
	p.NixPkgs = pkgs
	return p
}

// Install creates the install phase running cmds.
func Install(cmds ...string) *Phase {
	p := NewPhase(InstallPhase)
	p.AddCmds(cmds...)
	return p
}

// Build creates the build phase running cmds.
func Build(cmds ...string) *Phase {
	p := NewPhase(BuildPhase)
	p.AddCmds(cmds...)
	return p
}

func (p *Phase) Kind() Kind {
	switch p.Name {
	case SetupPhase:
		return KindSetup
	case InstallPhase:
		return KindInstall
	case BuildPhase:
		return KindBuild
	}
	return KindCustom
}

func (p *Phase) AddCmds(cmds ...string) {
	p.Cmds = concat(p.Cmds, cmds)
}

func (p *Phase) DependOn(names ...string) {
	p.DependsOn = union(p.DependsOn, names)
}

func (p *Phase) AddNixPkgs(pkgs ...nix.Pkg) {
	p.NixPkgs = unionPkgs(p.NixPkgs, pkgs)
}

func (p *Phase) AddNixLibs(libs ...string) {
	p.NixLibs = union(p.NixLibs, libs)
}

func (p *Phase) AddAptPkgs(pkgs ...string) {
	p.AptPkgs = union(p.AptPkgs, pkgs)
}

func (p *Phase) AddCacheDirectories(dirs ...string) {
	p.CacheDirectories = union(p.CacheDirectories, dirs)
}

func (p *Phase) AddPaths(paths ...string) {
	p.Paths = union(p.Paths, paths)
}

// Merge folds other into p: commands are appended, every other list is unioned.
func (p *Phase) Merge(other *Phase) {
	if other.Cmds != nil {
		p.Cmds = concat(p.Cmds, other.Cmds)
	}
	if other.DependsOn != nil {
		p.DependsOn = union(p.DependsOn, other.DependsOn)
	}
	if other.NixPkgs != nil {
		p.NixPkgs = unionPkgs(p.NixPkgs, other.NixPkgs)
	}
	if other.NixLibs != nil {
		p.NixLibs = union(p.NixLibs, other.NixLibs)
	}
	if other.AptPkgs != nil {
		p.AptPkgs = union(p.AptPkgs, other.AptPkgs)
	}
	if other.CacheDirectories != nil {
		p.CacheDirectories = union(p.CacheDirectories, other.CacheDirectories)
	}
	if other.Paths != nil {
		p.Paths = union(p.Paths, other.Paths)
	}
}

// DeepCopy returns a copy of p sharing no slices with it.
func (p *Phase) DeepCopy() *Phase {
	if p == nil {
		return nil
	}
	return &Phase{
		Name:             p.Name,
		Cmds:             clone(p.Cmds),
		DependsOn:        clone(p.DependsOn),
		NixPkgs:          clonePkgs(p.NixPkgs),
		NixLibs:          clone(p.NixLibs),
		AptPkgs:          clone(p.AptPkgs),
		CacheDirectories: clone(p.CacheDirectories),
		Paths:            clone(p.Paths),
	}
}

// StartPhase is the command the image runs.
type StartPhase struct {
	Cmd string
	// RunImage, when set, is the image the built /app is copied into.
	RunImage string
}

func NewStartPhase(cmd string) *StartPhase {
	return &StartPhase{Cmd: cmd}
}

func (s *StartPhase) DeepCopy() *StartPhase {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// concat returns existing followed by incoming. The result is nil only when
// both inputs are nil.
func concat(existing, incoming []string) []string {
	if existing == nil && incoming == nil {
		return nil
	}
	out := make([]string, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	return append(out, incoming...)
}

// union returns existing followed by the incoming values it does not contain yet.
func union(existing, incoming []string) []string {
	if existing == nil && incoming == nil {
		return nil
	}
	out := make([]string, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	seen := map[string]bool{}
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func unionPkgs(existing, incoming []nix.Pkg) []nix.Pkg {
	if existing == nil && incoming == nil {
		return nil
	}
	out := make([]nix.Pkg, 0, len(existing)+len(incoming))
	out = append(out, clonePkgs(existing)...)
	seen := map[string]bool{}
	for _, pkg := range existing {
		seen[pkg.String()] = true
	}
	for _, pkg := range incoming {
		if !seen[pkg.String()] {
			seen[pkg.String()] = true
			out = append(out, clonePkg(pkg))
		}
	}
	return out
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func clonePkg(pkg nix.Pkg) nix.Pkg {
	return nix.Pkg{Name: pkg.Name, Overlays: clone(pkg.Overlays)}
}

func clonePkgs(pkgs []nix.Pkg) []nix.Pkg {
	if pkgs == nil {
		return nil
	}
	out := make([]nix.Pkg, 0, len(pkgs))
	for _, pkg := range pkgs {
		out = append(out, clonePkg(pkg))
	}
	return out
}
