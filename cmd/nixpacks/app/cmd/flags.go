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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	nixerrors "github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/errors"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
)

// for testing
var lookupEnv = os.LookupEnv

// commonFlags are shared by every command that generates a plan.
type commonFlags struct {
	env        []string
	envFile    string
	configFile string
}

func (f *commonFlags) addTo(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.env, "env", nil, "Environment variable KEY=VALUE. A bare KEY takes its value from the current environment")
	fs.StringVar(&f.envFile, "env-file", "", "Read environment variables from a dotenv file")
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to a nixpacks.toml or nixpacks.json config file, relative to the app")
}

// environment returns the variables of the env file followed by the --env ones.
func (f *commonFlags) environment() ([]string, error) {
	var env []string

	if f.envFile != "" {
		path, err := util.ExpandHomePath(f.envFile)
		if err != nil {
			return nil, nixerrors.PlanParseErr(err)
		}
		vars, err := app.ReadEnvFile(path)
		if err != nil {
			return nil, nixerrors.PlanParseErr(err)
		}
		env = append(env, vars...)
	}

	for _, e := range f.env {
		if strings.Contains(e, "=") {
			env = append(env, e)
			continue
		}

		value, found := lookupEnv(e)
		if !found {
			return nil, nixerrors.PlanParseErr(fmt.Errorf("environment variable %q is not set", e))
		}
		env = append(env, e+"="+value)
	}

	return env, nil
}
