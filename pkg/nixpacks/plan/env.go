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
	"strings"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
)

// Environment variables that override parts of a plan.
const (
	EnvInstallCmd       = constants.EnvPrefix + "INSTALL_CMD"
	EnvBuildCmd         = constants.EnvPrefix + "BUILD_CMD"
	EnvStartCmd         = constants.EnvPrefix + "START_CMD"
	EnvRunImage         = constants.EnvPrefix + "RUN_IMAGE"
	EnvPkgs             = constants.EnvPrefix + "PKGS"
	EnvAptPkgs          = constants.EnvPrefix + "APT_PKGS"
	EnvLibs             = constants.EnvPrefix + "LIBS"
	EnvBuildImage       = constants.EnvPrefix + "BUILD_IMAGE"
	EnvInstallCacheDirs = constants.EnvPrefix + "INSTALL_CACHE_DIRS"
	EnvBuildCacheDirs   = constants.EnvPrefix + "BUILD_CACHE_DIRS"
)

// FromEnvironment builds the plan described by the NIXPACKS_* variables in env.
// Package and directory lists are separated by spaces or commas.
func FromEnvironment(env map[string]string) *BuildPlan {
	p := NewBuildPlan()

	pkgs, hasPkgs := list(env, EnvPkgs)
	aptPkgs, hasApt := list(env, EnvAptPkgs)
	libs, hasLibs := list(env, EnvLibs)
	if hasPkgs || hasApt || hasLibs {
		setup := Setup(nix.NewPkgs(pkgs))
		setup.AptPkgs = aptPkgs
		setup.NixLibs = libs
		p.AddPhase(setup)
	}

	if cmd, ok := env[EnvInstallCmd]; ok {
		p.AddPhase(Install(cmd))
	}
	if dirs, ok := list(env, EnvInstallCacheDirs); ok {
		install := NewPhase(InstallPhase)
		install.Cmds = nil
		install.CacheDirectories = dirs
		p.AddPhase(install)
	}

	if cmd, ok := env[EnvBuildCmd]; ok {
		p.AddPhase(Build(cmd))
	}
	if dirs, ok := list(env, EnvBuildCacheDirs); ok {
		build := NewPhase(BuildPhase)
		build.Cmds = nil
		build.CacheDirectories = dirs
		p.AddPhase(build)
	}

	if cmd, ok := env[EnvStartCmd]; ok {
		start := NewStartPhase(cmd)
		start.RunImage = env[EnvRunImage]
		p.SetStartPhase(start)
	}

	if image, ok := env[EnvBuildImage]; ok {
		p.BuildImage = image
	}

	return p
}

func list(env map[string]string, key string) ([]string, bool) {
	value, ok := env[key]
	if !ok {
		return nil, false
	}
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == ','
	}), true
}
