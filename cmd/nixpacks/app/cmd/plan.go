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

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/GoogleContainerTools/nixpacks/cmd/nixpacks/app/flags"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks"
	nixerrors "github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/errors"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
)

type planFlags struct {
	commonFlags

	installCmds flags.StringList
	buildCmds   flags.StringList
	startCmd    flags.OptionalString
	aptPkgs     flags.StringList
	nixPkgs     flags.StringList
	nixLibs     flags.StringList
	jsonPlan    flags.OptionalString
	format      string
}

// NewCmdPlan describes the CLI command to print the plan of an app.
func NewCmdPlan() *cobra.Command {
	f := &planFlags{}

	return NewCmd("plan PATH").
		WithDescription("Print the build plan of an app").
		WithLongDescription("Generate the build plan of an app from its providers, its config file, the NIXPACKS_* environment variables and the flags, and print it.").
		WithExample("Print the plan as JSON", "plan .").
		WithExample("Override the install and build commands", "plan . --install-cmd 'npm ci' --build-cmd 'npm run build'").
		WithExample("Start from a plan stored in a file", "plan . --json-plan @plan.json --format toml").
		WithCommonFlags(&f.commonFlags).
		WithFlags(func(fs *pflag.FlagSet) {
			fs.VarP(&f.installCmds, "install-cmd", "i", "Command of the install phase, repeatable")
			fs.VarP(&f.buildCmds, "build-cmd", "b", "Command of the build phase, repeatable")
			fs.VarP(&f.startCmd, "start-cmd", "s", "Command the image starts with")
			fs.Var(&f.aptPkgs, "apt", "Apt package installed in the setup phase, repeatable")
			fs.VarP(&f.nixPkgs, "pkgs", "p", "Nix package installed in the setup phase, repeatable")
			fs.Var(&f.nixLibs, "libs", "Nix library installed in the setup phase, repeatable")
			fs.Var(&f.jsonPlan, "json-plan", "Plan merged under the flags, as JSON or @FILE")
			fs.StringVarP(&f.format, "format", "f", string(plan.FormatJSON), "Output format (json, toml)")
		}).
		ExactArgs(1, func(ctx context.Context, out io.Writer, args []string) error {
			return doPlan(ctx, out, args[0], f)
		})
}

func doPlan(ctx context.Context, out io.Writer, path string, f *planFlags) error {
	env, err := f.environment()
	if err != nil {
		return err
	}

	jsonPlan, err := readJSONPlan(f.jsonPlan.Value())
	if err != nil {
		return nixerrors.PlanParseErr(err)
	}

	text, err := nixpacks.Plan(ctx, path, nixpacks.PlanOptions{
		Env:         env,
		JSONPlan:    jsonPlan,
		InstallCmds: f.installCmds.GetSlice(),
		BuildCmds:   f.buildCmds.GetSlice(),
		StartCmd:    f.startCmd.Value(),
		AptPkgs:     f.aptPkgs.GetSlice(),
		NixPkgs:     f.nixPkgs.GetSlice(),
		NixLibs:     f.nixLibs.GetSlice(),
		ConfigFile:  f.configFile,
		Format:      plan.Format(f.format),
	})
	if err != nil {
		return err
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err = io.WriteString(out, text)
	return err
}

// readJSONPlan reads the plan from a file when the value starts with `@`.
func readJSONPlan(value *string) (*string, error) {
	if value == nil || !strings.HasPrefix(*value, "@") {
		return value, nil
	}

	path, err := util.ExpandHomePath(strings.TrimPrefix(*value, "@"))
	if err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	text := string(buf)
	return &text, nil
}
