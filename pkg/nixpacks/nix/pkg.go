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

package nix

import (
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// Pkg identifies a nix package, optionally with an overlay attribute path.
type Pkg struct {
	Name     string
	Overlays []string
}

// NewPkg parses a package name. `name@overlay` selects an overlay.
func NewPkg(name string) Pkg {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, "@")
	if len(parts) == 1 {
		return Pkg{Name: name}
	}
	return Pkg{Name: parts[0], Overlays: parts[1:]}
}

// NewPkgs parses package names.
func NewPkgs(names []string) []Pkg {
	if names == nil {
		return nil
	}
	pkgs := make([]Pkg, 0, len(names))
	for _, name := range names {
		pkgs = append(pkgs, NewPkg(name))
	}
	return pkgs
}

func (p Pkg) String() string {
	if len(p.Overlays) == 0 {
		return p.Name
	}
	return p.Name + "@" + strings.Join(p.Overlays, "@")
}

func (p Pkg) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pkg) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		return fmt.Errorf("empty nix package name")
	}
	*p = NewPkg(string(text))
	return nil
}

// PackageResolver turns package identifiers into shell commands that install them.
type PackageResolver interface {
	NixInstallCmds(pkgs []Pkg, libs []string) []string
	AptInstallCmds(pkgs []string) []string
}

// DefaultResolver installs nix packages with nix-env and apt packages with apt-get.
var DefaultResolver PackageResolver = &envResolver{}

type envResolver struct{}

func (*envResolver) NixInstallCmds(pkgs []Pkg, libs []string) []string {
	if len(pkgs) == 0 && len(libs) == 0 {
		return nil
	}

	var cmds []string
	if len(pkgs) > 0 {
		args := []string{"nix-env", "-iA"}
		for _, pkg := range pkgs {
			args = append(args, attrPath(pkg))
		}
		cmds = append(cmds, shellquote.Join(args...)+" && nix-collect-garbage -d")
	}

	if len(libs) > 0 {
		var paths []string
		for _, lib := range libs {
			paths = append(paths, fmt.Sprintf("$(nix eval --raw nixpkgs.%s)/lib", lib))
		}
		cmds = append(cmds, fmt.Sprintf("echo 'export LD_LIBRARY_PATH=%s:$LD_LIBRARY_PATH' >> /etc/profile", strings.Join(paths, ":")))
	}

	return cmds
}

func (*envResolver) AptInstallCmds(pkgs []string) []string {
	if len(pkgs) == 0 {
		return nil
	}

	args := append([]string{"apt-get", "install", "-y", "--no-install-recommends"}, pkgs...)
	return []string{"apt-get update && " + shellquote.Join(args...) + " && rm -rf /var/lib/apt/lists/*"}
}

func attrPath(pkg Pkg) string {
	if len(pkg.Overlays) == 0 {
		return "nixpkgs." + pkg.Name
	}
	return pkg.Overlays[len(pkg.Overlays)-1] + "." + pkg.Name
}
