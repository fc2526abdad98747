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

package constants

import (
	"github.com/sirupsen/logrus"
)

type Phase string

const (
	Nixpacks = Phase("Nixpacks")
	Detect   = Phase("Detect")
	Plan     = Phase("Plan")
	Build    = Phase("Build")

	SubtaskIDNone = "-1"
)

const (
	// DefaultLogLevel is the default global verbosity
	DefaultLogLevel = logrus.WarnLevel

	// DefaultBaseImage is the image phases run in when a plan does not name one.
	DefaultBaseImage = "ghcr.io/railwayapp/nixpacks:ubuntu-1707782610"

	// AppDir is where the source is copied in the image.
	AppDir = "/app/"

	// BuildDir holds the generated Dockerfile inside an output directory.
	BuildDir = ".nixpacks"

	DockerfileName = "Dockerfile"

	// ConfigFileNames are looked up, in order, in the root of the source.
	ConfigFileTOML = "nixpacks.toml"
	ConfigFileJSON = "nixpacks.json"

	Procfile = "Procfile"

	// EnvPrefix is the prefix of environment variables that override the plan.
	EnvPrefix = "NIXPACKS_"

	// MinBuildKitAPIVersion is the minimum docker API version with BuildKit cache mounts.
	MinBuildKitAPIVersion = "1.39.0"
)

// Exit codes
const (
	ExitCodeGeneric        = 1
	ExitCodeDetect         = 2
	ExitCodePlanParse      = 3
	ExitCodePlanGeneration = 4
	ExitCodeBuildExecution = 5
)
