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

	"github.com/heroku/color"
	"github.com/spf13/cobra"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/version"
)

// NewNixpacksCommand creates the root command with every subcommand.
func NewNixpacksCommand(out, errOut io.Writer) *cobra.Command {
	var (
		verbosity string
		noColor   bool
	)

	rootCmd := &cobra.Command{
		Use:           "nixpacks",
		Short:         "Build container images from source code, without a Dockerfile",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := log.SetupLogs(errOut, verbosity); err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
		color.Disable(noColor)
		log.Entry(context.Background()).Debugf("nixpacks %+v", version.Get())
		return nil
	}

	rootCmd.AddCommand(NewCmdDetect())
	rootCmd.AddCommand(NewCmdPlan())
	rootCmd.AddCommand(NewCmdBuild())
	rootCmd.AddCommand(NewCmdVersion())

	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", constants.DefaultLogLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colors in the output")

	return rootCmd
}
