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

package nixpacks

import (
	"fmt"
	"io"
	"strings"

	"github.com/heroku/color"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
)

var (
	titleColor = color.New(color.FgHiMagenta, color.Bold)
	phaseColor = color.New(color.FgCyan)
)

// WriteSummary writes one line per phase of p, in build order, followed by
// the start command.
func WriteSummary(out io.Writer, p *plan.BuildPlan) error {
	phases, err := p.OrderedPhases()
	if err != nil {
		return err
	}

	providers := "none"
	if len(p.Providers) > 0 {
		providers = strings.Join(p.Providers, ", ")
	}

	type row struct{ name, value string }
	var rows []row
	for _, phase := range phases {
		rows = append(rows, row{phase.Name, describe(phase)})
	}
	if start := p.StartCmd(); start != "" {
		rows = append(rows, row{"start", start})
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r.name))
	}

	var b strings.Builder
	fmt.Fprintln(&b, titleColor.Sprintf("Providers: %s", providers))
	for _, r := range rows {
		fmt.Fprintf(&b, "%s │ %s\n", phaseColor.Sprint(fmt.Sprintf("%-*s", width, r.name)), r.value)
	}

	_, err = io.WriteString(out, b.String())
	return err
}

func describe(phase *plan.Phase) string {
	var parts []string
	var pkgs []string
	for _, pkg := range phase.NixPkgs {
		pkgs = append(pkgs, pkg.String())
	}
	pkgs = append(pkgs, phase.NixLibs...)
	if len(pkgs) > 0 {
		parts = append(parts, strings.Join(pkgs, ", "))
	}
	if len(phase.AptPkgs) > 0 {
		parts = append(parts, "apt: "+strings.Join(phase.AptPkgs, ", "))
	}
	if len(phase.Cmds) > 0 {
		parts = append(parts, strings.Join(phase.Cmds, " && "))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}
