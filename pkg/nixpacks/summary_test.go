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
	"bytes"
	"testing"

	"github.com/heroku/color"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/testutil"
)

func TestWriteSummary(t *testing.T) {
	tests := []struct {
		description string
		plan        func() *plan.BuildPlan
		expected    string
	}{
		{
			description: "empty plan",
			plan:        plan.NewBuildPlan,
			expected:    "Providers: none\n",
		},
		{
			description: "phases in build order",
			plan: func() *plan.BuildPlan {
				p := plan.NewBuildPlan()
				p.Providers = []string{"node", "procfile"}
				p.AddPhase(plan.Build("npm run build"))
				p.AddPhase(plan.Install("npm ci", "npm audit"))
				setup := plan.Setup([]nix.Pkg{nix.NewPkg("nodejs")})
				setup.AddAptPkgs("ffmpeg")
				p.AddPhase(setup)
				p.AddPhase(plan.NewPhase("lint"))
				p.SetStartPhase(plan.NewStartPhase("npm start"))
				return p
			},
			expected: `Providers: node, procfile
setup   │ nodejs; apt: ffmpeg
install │ npm ci && npm audit
build   │ npm run build
lint    │ -
start   │ npm start
`,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			color.Disable(true)
			t.Cleanup(func() { color.Disable(false) })
			var out bytes.Buffer

			err := WriteSummary(&out, test.plan())

			t.CheckErrorAndDeepEqual(false, err, test.expected, out.String())
		})
	}
}

func TestWriteSummaryCycle(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		p := plan.NewBuildPlan()
		a := plan.NewPhase("a")
		a.DependOn("b")
		b := plan.NewPhase("b")
		b.DependOn("a")
		p.AddPhase(a)
		p.AddPhase(b)

		err := WriteSummary(&bytes.Buffer{}, p)

		t.CheckErrorContains("circular dependency", err)
	})
}
