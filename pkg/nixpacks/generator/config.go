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

package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/app"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/plan"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
)

// EnvConfigFile names a config file when none is given explicitly.
const EnvConfigFile = constants.EnvPrefix + "CONFIG_FILE"

// ReadConfig reads the plan of the config file. An explicit file must exist.
// Otherwise nixpacks.toml then nixpacks.json are looked up in the app root,
// and a nil plan is returned when neither exists.
func ReadConfig(a *app.App, env *app.Environment, configFile string) (*plan.BuildPlan, error) {
	if configFile == "" {
		configFile, _ = env.Get(EnvConfigFile)
	}

	var path string
	if configFile != "" {
		resolved, err := resolveConfigPath(a, configFile)
		if err != nil {
			return nil, err
		}
		path = resolved
	} else {
		for _, name := range []string{constants.ConfigFileTOML, constants.ConfigFileJSON} {
			if a.IncludesFile(name) {
				path = a.Path(name)
				break
			}
		}
		if path == "" {
			return nil, nil
		}
	}

	content, err := readFile(path)
	if err != nil {
		return nil, err
	}

	format := plan.FormatTOML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = plan.FormatJSON
	}

	p, err := plan.Deserialize(content, format)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

func resolveConfigPath(a *app.App, configFile string) (string, error) {
	if strings.HasPrefix(configFile, "~") {
		return util.ExpandHomePath(configFile)
	}
	if filepath.IsAbs(configFile) {
		return configFile, nil
	}
	return a.Path(configFile), nil
}

func readFile(path string) (string, error) {
	if !util.IsFile(path) {
		return "", fmt.Errorf("config file %s not found", path)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return string(buf), nil
}
