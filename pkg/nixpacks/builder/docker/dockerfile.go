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
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/command"
	"github.com/moby/buildkit/frontend/dockerfile/parser"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
)

// GenerateDockerfile renders the Dockerfile that runs the phases of p in
// dependency order and starts its start command.
func GenerateDockerfile(p *plan.BuildPlan, opts DockerBuilderOptions, resolver nix.PackageResolver) (string, error) {
	phases, err := p.OrderedPhases()
	if err != nil {
		return "", err
	}

	buildImage := p.BuildImage
	if buildImage == "" {
		buildImage = constants.DefaultBaseImage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n\n", buildImage)
	fmt.Fprintf(&b, "ENTRYPOINT %s\n", execForm("/bin/bash", "-l", "-c"))
	fmt.Fprintf(&b, "WORKDIR %s\n", constants.AppDir)
	writeVariables(&b, p.Variables)

	copied := false
	for _, phase := range phases {
		fmt.Fprintf(&b, "\n# %s phase\n", phase.Name)
		if phase.Kind() != plan.KindSetup && !copied {
			fmt.Fprintf(&b, "COPY . %s\n", constants.AppDir)
			copied = true
		}
		if len(phase.Paths) > 0 {
			fmt.Fprintf(&b, "ENV PATH=%s:$PATH\n", strings.Join(phase.Paths, ":"))
		}

		mounts := cacheMounts(phase.CacheDirectories, opts)
		for _, cmd := range phaseCmds(phase, resolver) {
			if strings.ContainsAny(cmd, "\r\n") {
				return "", fmt.Errorf("command of phase %s spans several lines: %q", phase.Name, cmd)
			}
			fmt.Fprintf(&b, "RUN %s%s\n", mounts, cmd)
		}
	}

	if !copied {
		fmt.Fprintf(&b, "\nCOPY . %s\n", constants.AppDir)
	}

	if cmd := p.StartCmd(); cmd != "" {
		if strings.ContainsAny(cmd, "\r\n") {
			return "", fmt.Errorf("start command spans several lines: %q", cmd)
		}
		if runImage := p.Start.RunImage; runImage != "" {
			fmt.Fprintf(&b, "\nFROM %s\n", runImage)
			fmt.Fprintf(&b, "ENTRYPOINT %s\n", execForm("/bin/sh", "-c"))
			fmt.Fprintf(&b, "WORKDIR %s\n", constants.AppDir)
			writeVariables(&b, p.Variables)
			fmt.Fprintf(&b, "COPY --from=0 %s %s\n", constants.AppDir, constants.AppDir)
		}
		fmt.Fprintf(&b, "\nCMD %s\n", execForm(cmd))
	}

	dockerfile := b.String()
	if err := validateDockerfile(dockerfile); err != nil {
		return "", err
	}
	return dockerfile, nil
}

// phaseCmds returns the commands installing the packages of phase, then its own commands.
func phaseCmds(phase *plan.Phase, resolver nix.PackageResolver) []string {
	var cmds []string
	cmds = append(cmds, resolver.NixInstallCmds(phase.NixPkgs, phase.NixLibs)...)
	cmds = append(cmds, resolver.AptInstallCmds(phase.AptPkgs)...)
	return append(cmds, phase.Cmds...)
}

func writeVariables(b *strings.Builder, variables map[string]string) {
	if len(variables) == 0 {
		return
	}

	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n")
	var envs []string
	for _, k := range keys {
		fmt.Fprintf(b, "ARG %s\n", k)
		envs = append(envs, fmt.Sprintf("%s=$%s", k, k))
	}
	fmt.Fprintf(b, "ENV %s\n", strings.Join(envs, " "))
}

// cacheMounts returns the --mount flags of a RUN instruction, or "" when caching is disabled.
func cacheMounts(dirs []string, opts DockerBuilderOptions) string {
	if opts.NoCache || len(dirs) == 0 {
		return ""
	}

	key := opts.CacheKey
	if key == "" {
		key = opts.Name
	}

	var mounts []string
	for _, dir := range dirs {
		id := cacheID(dir)
		if key != "" {
			id = key + "-" + id
		}
		mounts = append(mounts, fmt.Sprintf("--mount=type=cache,id=%s,target=%s", id, cacheTarget(dir)))
	}
	return strings.Join(mounts, " ") + " "
}

func cacheID(dir string) string {
	id := strings.NewReplacer("~", "", "/", "-").Replace(dir)
	return strings.Trim(id, "-")
}

// cacheTarget resolves ~ to the home of root and relative directories against the app directory.
func cacheTarget(dir string) string {
	switch {
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		return path.Join("/root", strings.TrimPrefix(dir, "~"))
	case path.IsAbs(dir):
		return dir
	}
	return path.Join(constants.AppDir, dir)
}

// execForm renders args as the JSON array of an exec form instruction.
func execForm(args ...string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// validateDockerfile makes sure the generated Dockerfile only has valid instructions.
func validateDockerfile(dockerfile string) error {
	res, err := parser.Parse(strings.NewReader(dockerfile))
	if err != nil {
		return fmt.Errorf("parsing generated Dockerfile: %w", err)
	}

	for _, child := range res.AST.Children {
		if _, ok := command.Commands[strings.ToLower(child.Value)]; !ok {
			return fmt.Errorf("generated Dockerfile has an invalid instruction on line %d: %s", child.StartLine, child.Original)
		}
	}
	return nil
}
