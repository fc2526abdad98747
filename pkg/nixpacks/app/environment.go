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

package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Environment holds the variables a plan is generated and built with.
type Environment struct {
	Variables map[string]string
}

// NewEnvironment parses KEY=VALUE assignments. Later assignments of the same
// key win. Entries without `=` or with an empty key are rejected.
func NewEnvironment(vars []string) (*Environment, error) {
	env := &Environment{Variables: map[string]string{}}
	for _, v := range vars {
		key, value, found := strings.Cut(v, "=")
		if !found {
			return nil, fmt.Errorf("invalid environment variable %q, expected KEY=VALUE", v)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid environment variable %q, empty name", v)
		}
		env.Variables[key] = value
	}
	return env, nil
}

// Get returns the value of key.
func (e *Environment) Get(key string) (string, bool) {
	value, ok := e.Variables[key]
	return value, ok
}

// Keys returns the variable names, sorted.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.Variables))
	for k := range e.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Assignments returns the variables as sorted KEY=VALUE strings.
func (e *Environment) Assignments() []string {
	var out []string
	for _, k := range e.Keys() {
		out = append(out, k+"="+e.Variables[k])
	}
	return out
}

// ReadEnvFile reads a dotenv file into sorted KEY=VALUE assignments.
func ReadEnvFile(path string) ([]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %q: %w", path, err)
	}
	return (&Environment{Variables: vars}).Assignments(), nil
}
