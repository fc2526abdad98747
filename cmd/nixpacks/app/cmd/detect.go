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

	"github.com/spf13/cobra"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks"
)

// NewCmdDetect describes the CLI command to list the providers of an app.
func NewCmdDetect() *cobra.Command {
	var flags commonFlags

	return NewCmd("detect PATH").
		WithDescription("List the providers that apply to an app").
		WithExample("Detect the providers of the app in the current directory", "detect .").
		WithExample("Detect with a custom config file", "detect . --config deploy/nixpacks.toml").
		WithCommonFlags(&flags).
		ExactArgs(1, func(ctx context.Context, out io.Writer, args []string) error {
			return doDetect(ctx, out, args[0], &flags)
		})
}

func doDetect(ctx context.Context, out io.Writer, path string, flags *commonFlags) error {
	env, err := flags.environment()
	if err != nil {
		return err
	}

	names, err := nixpacks.Detect(ctx, path, nixpacks.DetectOptions{
		Env:        env,
		ConfigFile: flags.configFile,
	})
	if err != nil {
		return err
	}

	if names == "" {
		return nil
	}
	_, err = fmt.Fprintln(out, names)
	return err
}
