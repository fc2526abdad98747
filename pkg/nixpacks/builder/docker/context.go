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
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
	"github.com/otiai10/copy"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
)

const dockerignore = ".dockerignore"

// buildContext is a directory docker builds from and the Dockerfile to build.
type buildContext struct {
	Dir        string
	Dockerfile string

	tempDirs []string
}

// Close removes the temporary directories of the context.
func (c *buildContext) Close() error {
	var firstErr error
	for _, dir := range c.tempDirs {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.tempDirs = nil
	return firstErr
}

// newBuildContext prepares the context of a build. The source is used in place
// when building from the current directory, otherwise it is copied to a
// temporary directory. The caller must Close the context.
func newBuildContext(ctx context.Context, source, dockerfile string, currentDir bool) (*buildContext, error) {
	bc := &buildContext{}
	if err := bc.prepare(ctx, source, dockerfile, currentDir); err != nil {
		bc.Close()
		return nil, err
	}
	return bc, nil
}

func (c *buildContext) prepare(ctx context.Context, source, dockerfile string, currentDir bool) error {
	tmp, err := newTempDir()
	if err != nil {
		return err
	}
	c.tempDirs = append(c.tempDirs, tmp)

	dockerfileDir := tmp
	c.Dir = source
	if !currentDir {
		log.Entry(ctx).Debugf("Copying %s to %s", source, tmp)
		if err := copySource(source, tmp); err != nil {
			return err
		}
		dockerfileDir = filepath.Join(tmp, constants.BuildDir)
		c.Dir = tmp
	}

	c.Dockerfile, err = writeDockerfile(dockerfileDir, dockerfile)
	return err
}

// writeOutDir copies the source to outDir and writes the Dockerfile to
// outDir/.nixpacks/Dockerfile.
func writeOutDir(ctx context.Context, source, outDir, dockerfile string) (string, error) {
	outDir, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}

	if outDir != source {
		log.Entry(ctx).Debugf("Copying %s to %s", source, outDir)
		if err := copySource(source, outDir); err != nil {
			return "", err
		}
	}

	return writeDockerfile(filepath.Join(outDir, constants.BuildDir), dockerfile)
}

func newTempDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "nixpacks-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	return dir, nil
}

func writeDockerfile(dir, dockerfile string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, constants.DockerfileName)
	if err := os.WriteFile(path, []byte(dockerfile), 0o644); err != nil {
		return "", fmt.Errorf("writing Dockerfile: %w", err)
	}
	return path, nil
}

// copySource copies source to dest, leaving out .git and what .dockerignore excludes.
func copySource(source, dest string) error {
	matcher, err := dockerignoreMatcher(source)
	if err != nil {
		return err
	}

	err = copy.Copy(source, dest, copy.Options{
		Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
			if src == dest {
				return true, nil
			}

			relPath, err := filepath.Rel(source, src)
			if err != nil {
				return false, err
			}
			switch relPath {
			case ".":
				return false, nil
			case ".git":
				return true, nil
			}
			return matcher.MatchesOrParentMatches(relPath)
		},
	})
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", source, dest, err)
	}
	return nil
}

func dockerignoreMatcher(source string) (*patternmatcher.PatternMatcher, error) {
	var excludes []string

	f, err := os.Open(filepath.Join(source, dockerignore))
	switch {
	case err == nil:
		defer f.Close()
		if excludes, err = ignorefile.ReadAll(f); err != nil {
			return nil, fmt.Errorf("reading %s: %w", dockerignore, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	matcher, err := patternmatcher.New(excludes)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude patterns: %w", err)
	}
	return matcher, nil
}
