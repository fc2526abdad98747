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
	"context"
	"errors"
	"io"
	"testing"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/builder/docker"
	nixerrors "github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/errors"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/testutil"
)

type fakeExecutor struct {
	built []string
	err   error
}

func (f *fakeExecutor) Build(_ context.Context, _ io.Writer, req docker.BuildRequest) error {
	f.built = append(f.built, req.Name)
	return f.err
}

func (f *fakeExecutor) Close() error { return nil }

func useFakeExecutor(t *testutil.T, e *fakeExecutor) {
	t.Override(&docker.NewExecutor, func(context.Context, docker.DockerBuilderOptions) (docker.Executor, error) {
		return e, nil
	})
}

func strPtr(s string) *string {
	return &s
}

func TestDetect(t *testing.T) {
	tests := []struct {
		description string
		files       map[string]string
		opts        DetectOptions
		expected    string
	}{
		{
			description: "procfile",
			files:       map[string]string{"Procfile": "web: node server.js"},
			expected:    "procfile",
		},
		{
			description: "nothing detected",
			files:       map[string]string{"main.go": "package main"},
			expected:    "",
		},
		{
			description: "providers from config",
			files: map[string]string{
				"Procfile":   "web: node server.js",
				"build.toml": `providers = []`,
			},
			opts:     DetectOptions{ConfigFile: "build.toml"},
			expected: "",
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			tmp := t.NewTempDir()
			for name, content := range test.files {
				tmp.Write(name, content)
			}

			names, err := Detect(context.Background(), tmp.Root(), test.opts)

			t.CheckNoError(err)
			t.CheckDeepEqual(test.expected, names)
		})
	}
}

func TestDetectErrors(t *testing.T) {
	testutil.Run(t, "missing path", func(t *testutil.T) {
		_, err := Detect(context.Background(), t.NewTempDir().Path("missing"), DetectOptions{})

		t.CheckDeepEqual(nixerrors.Detect, nixerrors.PhaseOf(err))
	})

	testutil.Run(t, "malformed env", func(t *testutil.T) {
		_, err := Detect(context.Background(), t.NewTempDir().Root(), DetectOptions{Env: []string{"PORT"}})

		t.CheckDeepEqual(nixerrors.PlanParse, nixerrors.PhaseOf(err))
	})
}

func TestPlan(t *testing.T) {
	tests := []struct {
		description string
		files       map[string]string
		opts        PlanOptions
		expected    *plan.BuildPlan
	}{
		{
			description: "explicit phases only",
			opts: PlanOptions{
				InstallCmds: []string{"a"},
				BuildCmds:   []string{"b"},
			},
			expected: &plan.BuildPlan{
				Phases: []*plan.Phase{
					{Name: "install", Cmds: []string{"a"}, DependsOn: []string{"setup"}},
					{Name: "build", Cmds: []string{"b"}, DependsOn: []string{"install"}},
				},
			},
		},
		{
			description: "nothing",
			expected:    &plan.BuildPlan{},
		},
		{
			description: "packages",
			opts: PlanOptions{
				NixPkgs: []string{"nodejs"},
				AptPkgs: []string{},
			},
			expected: &plan.BuildPlan{
				Phases: []*plan.Phase{
					{Name: "setup", Cmds: []string{}, NixPkgs: []nix.Pkg{{Name: "nodejs"}}, AptPkgs: []string{}},
				},
			},
		},
		{
			description: "override wins over json plan",
			opts: PlanOptions{
				JSONPlan:    strPtr(`{"phases":[{"name":"install","cmds":["x"]}],"start":{"cmd":"foo"}}`),
				InstallCmds: []string{"y"},
				StartCmd:    strPtr("bar"),
			},
			expected: &plan.BuildPlan{
				Phases: []*plan.Phase{
					{Name: "install", Cmds: []string{"x", "y"}, DependsOn: []string{"setup"}},
				},
				Start: &plan.StartPhase{Cmd: "bar"},
			},
		},
		{
			description: "procfile and env",
			files:       map[string]string{"Procfile": "web: node server.js"},
			opts:        PlanOptions{Env: []string{"PORT=3000"}},
			expected: &plan.BuildPlan{
				Providers: []string{"procfile"},
				Variables: map[string]string{"PORT": "3000"},
				Start:     &plan.StartPhase{Cmd: "node server.js"},
			},
		},
		{
			description: "env overrides",
			opts:        PlanOptions{Env: []string{"NIXPACKS_START_CMD=./run"}, StartCmd: strPtr("./serve")},
			expected: &plan.BuildPlan{
				Variables: map[string]string{"NIXPACKS_START_CMD": "./run"},
				Start:     &plan.StartPhase{Cmd: "./serve"},
			},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			tmp := t.NewTempDir()
			for name, content := range test.files {
				tmp.Write(name, content)
			}

			text, err := Plan(context.Background(), tmp.Root(), test.opts)
			t.CheckNoError(err)

			p, err := plan.FromJSON(text)
			t.CheckErrorAndDeepEqual(false, err, test.expected, p)
		})
	}
}

func TestPlanTOML(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		tmp := t.NewTempDir().Write("Procfile", "web: node server.js")

		text, err := Plan(context.Background(), tmp.Root(), PlanOptions{Format: plan.FormatTOML})
		t.CheckNoError(err)

		p, err := plan.FromTOML(text)
		t.CheckNoError(err)
		t.CheckDeepEqual("node server.js", p.StartCmd())
	})
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		description string
		opts        PlanOptions
		phase       nixerrors.Phase
	}{
		{
			description: "invalid json plan",
			opts:        PlanOptions{JSONPlan: strPtr(`{"phases":`)},
			phase:       nixerrors.PlanParse,
		},
		{
			description: "unknown format",
			opts:        PlanOptions{Format: "yaml"},
			phase:       nixerrors.PlanParse,
		},
		{
			description: "unknown provider",
			opts:        PlanOptions{JSONPlan: strPtr(`{"providers":["cobol"]}`)},
			phase:       nixerrors.Detect,
		},
		{
			description: "cycle",
			opts:        PlanOptions{JSONPlan: strPtr(`{"phases":[{"name":"a","dependsOn":["b"]},{"name":"b","dependsOn":["a"]}]}`)},
			phase:       nixerrors.PlanGeneration,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			_, err := Plan(context.Background(), t.NewTempDir().Root(), test.opts)

			t.CheckDeepEqual(test.phase, nixerrors.PhaseOf(err))
		})
	}
}

func TestBuild(t *testing.T) {
	testutil.Run(t, "print dockerfile", func(t *testutil.T) {
		tmp := t.NewTempDir().Write("Procfile", "web: node server.js")
		var out bytes.Buffer

		err := Build(context.Background(), tmp.Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app", PrintDockerfile: true},
			Out:                  &out,
		})

		t.CheckNoError(err)
		t.CheckContains(`CMD ["node server.js"]`, out.String())
	})

	testutil.Run(t, "build", func(t *testutil.T) {
		e := &fakeExecutor{}
		useFakeExecutor(t, e)
		tmp := t.NewTempDir().Write("Procfile", "web: node server.js")

		err := Build(context.Background(), tmp.Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app"},
			Out:                  &bytes.Buffer{},
		})

		t.CheckNoError(err)
		t.CheckDeepEqual([]string{"app"}, e.built)
	})

	testutil.Run(t, "no start command", func(t *testutil.T) {
		err := Build(context.Background(), t.NewTempDir().Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app"},
			Out:                  &bytes.Buffer{},
		})

		t.CheckDeepEqual(nixerrors.PlanGeneration, nixerrors.PhaseOf(err))
		t.CheckDeepEqual("No start command could be found", err.Error())
	})

	testutil.Run(t, "no start command tolerated", func(t *testutil.T) {
		e := &fakeExecutor{}
		useFakeExecutor(t, e)

		err := Build(context.Background(), t.NewTempDir().Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app", NoErrorWithoutStart: true},
			Out:                  &bytes.Buffer{},
		})

		t.CheckNoError(err)
		t.CheckDeepEqual([]string{"app"}, e.built)
	})

	testutil.Run(t, "failed build", func(t *testutil.T) {
		useFakeExecutor(t, &fakeExecutor{err: errors.New("exit status 1")})
		tmp := t.NewTempDir().Write("Procfile", "web: node server.js")

		err := Build(context.Background(), tmp.Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app"},
			Out:                  &bytes.Buffer{},
		})

		t.CheckDeepEqual(nixerrors.BuildExecution, nixerrors.PhaseOf(err))
		t.CheckDeepEqual("exit status 1", err.Error())
	})

	testutil.Run(t, "fire and forget", func(t *testutil.T) {
		useFakeExecutor(t, &fakeExecutor{err: errors.New("exit status 1")})
		tmp := t.NewTempDir().Write("Procfile", "web: node server.js")

		err := Build(context.Background(), tmp.Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app"},
			FireAndForget:        true,
			Out:                  &bytes.Buffer{},
		})

		t.CheckNoError(err)
	})

	testutil.Run(t, "fire and forget keeps plan errors", func(t *testutil.T) {
		err := Build(context.Background(), t.NewTempDir().Root(), BuildOptions{
			DockerBuilderOptions: docker.DockerBuilderOptions{Name: "app"},
			FireAndForget:        true,
			Out:                  &bytes.Buffer{},
		})

		t.CheckDeepEqual(nixerrors.PlanGeneration, nixerrors.PhaseOf(err))
	})
}
