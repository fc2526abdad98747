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

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDir offers actions on a temp directory.
type TempDir struct {
	t    *testing.T
	root string
}

// NewTempDir creates a temporary directory that is removed when the test ends.
func NewTempDir(t *testing.T) *TempDir {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &TempDir{t: t, root: root}
}

// Root returns the path to this TempDir.
func (h *TempDir) Root() string {
	return h.root
}

// Path returns an absolute path to a file in the temp directory.
func (h *TempDir) Path(file string) string {
	return filepath.Join(h.root, filepath.FromSlash(file))
}

// Mkdir makes a sub-directory in the temp directory.
func (h *TempDir) Mkdir(dir string) *TempDir {
	if err := os.MkdirAll(h.Path(dir), os.ModePerm); err != nil {
		h.t.Fatal(err)
	}
	return h
}

// Write writes a file in the temp directory, creating parent directories.
func (h *TempDir) Write(file, content string) *TempDir {
	path := h.Path(file)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		h.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), os.ModePerm); err != nil {
		h.t.Fatal(err)
	}
	return h
}

// Touch creates empty files in the temp directory.
func (h *TempDir) Touch(files ...string) *TempDir {
	for _, file := range files {
		h.Write(file, "")
	}
	return h
}

// Exists returns true if the given file exists in the temp directory.
func (h *TempDir) Exists(file string) bool {
	_, err := os.Stat(h.Path(file))
	return err == nil
}

// Read reads a file from the temp directory.
func (h *TempDir) Read(file string) string {
	buf, err := os.ReadFile(h.Path(file))
	if err != nil {
		h.t.Fatal(err)
	}
	return string(buf)
}

// Chdir changes the current directory to this TempDir for the rest of the test.
func (h *TempDir) Chdir() *TempDir {
	dir, err := os.Getwd()
	if err != nil {
		h.t.Fatal(err)
	}
	if err := os.Chdir(h.root); err != nil {
		h.t.Fatal(err)
	}
	h.t.Cleanup(func() { os.Chdir(dir) })
	return h
}
