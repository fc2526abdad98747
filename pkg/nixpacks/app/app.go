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
	"os"
	"path/filepath"
	"strings"
)

// App is a read-only view of the source tree being planned.
type App struct {
	Source string
}

// NewApp returns the app rooted at path.
func NewApp(path string) (*App, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading app source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("app source %q is not a directory", path)
	}

	return &App{Source: abs}, nil
}

// Path returns the absolute path of a file relative to the app root.
func (a *App) Path(name string) string {
	return filepath.Join(a.Source, filepath.FromSlash(name))
}

// IncludesFile returns true if name is a regular file in the app.
func (a *App) IncludesFile(name string) bool {
	info, err := os.Stat(a.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads a file relative to the app root.
func (a *App) ReadFile(name string) (string, error) {
	buf, err := os.ReadFile(a.Path(name))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return strings.ReplaceAll(string(buf), "\r\n", "\n"), nil
}
