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

package docker

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoogleContainerTools/nixpacks/testutil"
)

func sourceDir(t *testutil.T) *testutil.TempDir {
	return t.NewTempDir().
		Write("package.json", "{}").
		Write("src/index.js", "console.log('hi')").
		Write("node_modules/left-pad/index.js", "").
		Write(".git/HEAD", "ref: refs/heads/main").
		Write("secrets.env", "TOKEN=1").
		Write(".dockerignore", "node_modules\n*.env\n")
}

func TestCopySource(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		source := sourceDir(t)
		dest := t.NewTempDir()

		err := copySource(source.Root(), dest.Root())

		t.CheckNoError(err)
		t.CheckTrue(dest.Exists("package.json"))
		t.CheckTrue(dest.Exists("src/index.js"))
		t.CheckTrue(dest.Exists(".dockerignore"))
		t.CheckFalse(dest.Exists("node_modules"))
		t.CheckFalse(dest.Exists("secrets.env"))
		t.CheckFalse(dest.Exists(".git"))
	})
}

func TestCopySourceInvalidDockerignore(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		source := t.NewTempDir().Write(".dockerignore", "[")

		err := copySource(source.Root(), t.NewTempDir().Root())

		t.CheckErrorContains("invalid exclude patterns", err)
	})
}

func TestNewBuildContext(t *testing.T) {
	testutil.Run(t, "current dir", func(t *testutil.T) {
		source := sourceDir(t)

		bc, err := newBuildContext(context.Background(), source.Root(), "FROM scratch\n", true)
		t.CheckNoError(err)

		t.CheckDeepEqual(source.Root(), bc.Dir)
		t.CheckFalse(strings.HasPrefix(bc.Dockerfile, source.Root()))
		t.CheckDeepEqual("FROM scratch\n", readFile(t, bc.Dockerfile))

		t.CheckNoError(bc.Close())
		t.CheckFalse(fileExists(filepath.Dir(bc.Dockerfile)))
		t.CheckTrue(source.Exists("package.json"))
	})

	testutil.Run(t, "copy of the source", func(t *testutil.T) {
		source := sourceDir(t)

		bc, err := newBuildContext(context.Background(), source.Root(), "FROM scratch\n", false)
		t.CheckNoError(err)

		t.CheckFalse(bc.Dir == source.Root())
		t.CheckDeepEqual(filepath.Join(bc.Dir, ".nixpacks", "Dockerfile"), bc.Dockerfile)
		t.CheckDeepEqual("FROM scratch\n", readFile(t, bc.Dockerfile))
		t.CheckTrue(fileExists(filepath.Join(bc.Dir, "src", "index.js")))
		t.CheckFalse(fileExists(filepath.Join(bc.Dir, "node_modules")))

		t.CheckNoError(bc.Close())
		t.CheckFalse(fileExists(bc.Dir))
		t.CheckFalse(source.Exists(".nixpacks"))
	})

	testutil.Run(t, "missing source", func(t *testutil.T) {
		_, err := newBuildContext(context.Background(), t.NewTempDir().Path("missing"), "FROM scratch\n", false)

		t.CheckError(true, err)
	})
}

func TestWriteOutDir(t *testing.T) {
	testutil.Run(t, "separate directory", func(t *testutil.T) {
		source := sourceDir(t)
		out := t.NewTempDir()

		path, err := writeOutDir(context.Background(), source.Root(), out.Path("build"), "FROM scratch\n")

		t.CheckNoError(err)
		t.CheckDeepEqual(out.Path("build/.nixpacks/Dockerfile"), path)
		t.CheckDeepEqual("FROM scratch\n", out.Read("build/.nixpacks/Dockerfile"))
		t.CheckTrue(out.Exists("build/src/index.js"))
		t.CheckFalse(out.Exists("build/.git"))
	})

	testutil.Run(t, "into the source", func(t *testutil.T) {
		source := sourceDir(t)

		path, err := writeOutDir(context.Background(), source.Root(), source.Root(), "FROM scratch\n")

		t.CheckNoError(err)
		t.CheckDeepEqual(source.Path(".nixpacks/Dockerfile"), path)
		t.CheckTrue(source.Exists("node_modules/left-pad/index.js"))
	})

	testutil.Run(t, "inside the source", func(t *testutil.T) {
		source := sourceDir(t)

		_, err := writeOutDir(context.Background(), source.Root(), source.Path("out"), "FROM scratch\n")

		t.CheckNoError(err)
		t.CheckTrue(source.Exists("out/src/index.js"))
		t.CheckTrue(source.Exists("out/.nixpacks/Dockerfile"))
		t.CheckFalse(source.Exists("out/out"))
	})
}
