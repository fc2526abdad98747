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

package util

import (
	"path/filepath"
	"testing"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/GoogleContainerTools/nixpacks/testutil"
)

func TestExpandHomePath(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		tmpDir := t.NewTempDir()
		t.SetEnvs(map[string]string{"HOME": tmpDir.Root()})
		homedir.DisableCache = true
		t.Cleanup(func() { homedir.DisableCache = false })

		expanded, err := ExpandHomePath("~/out")

		t.CheckNoError(err)
		t.CheckDeepEqual(filepath.Join(tmpDir.Root(), "out"), expanded)
	})
}

func TestExpandHomePathEmpty(t *testing.T) {
	expanded, err := ExpandHomePath("")

	testutil.CheckErrorAndDeepEqual(t, false, err, "", expanded)
}

func TestIsFileAndIsDir(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Touch("file").Mkdir("dir")

		t.CheckTrue(IsFile(tmpDir.Path("file")))
		t.CheckFalse(IsFile(tmpDir.Path("dir")))
		t.CheckTrue(IsDir(tmpDir.Path("dir")))
		t.CheckFalse(IsDir(tmpDir.Path("missing")))
	})
}

func TestStrSliceContains(t *testing.T) {
	testutil.CheckDeepEqual(t, true, StrSliceContains([]string{"a", "b"}, "b"))
	testutil.CheckDeepEqual(t, false, StrSliceContains(nil, "b"))
}
