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
	"fmt"
	"strconv"

	"github.com/containerd/platforms"
	"github.com/distribution/reference"
	"github.com/docker/go-units"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/util"
)

// DockerBuilderOptions configures how an image is built from a plan. The
// zero value builds with the documented defaults.
type DockerBuilderOptions struct {
	// Name of the image. A random name is used when empty.
	Name string
	// OutDir receives the build context and Dockerfile instead of building.
	OutDir string
	// PrintDockerfile writes the Dockerfile instead of building.
	PrintDockerfile bool
	Tags            []string
	Labels          []string

	// Quiet defaults to !Verbose.
	Quiet *bool
	// CacheKey prefixes the ids of cache mounts. Defaults to Name.
	CacheKey string
	// NoCache disables every cache, it wins over the other cache options.
	NoCache bool
	// InlineCache defaults to true.
	InlineCache *bool
	CacheFrom   string
	// IncrementalCacheImage is used as a cache source along with CacheFrom.
	IncrementalCacheImage string

	Platform []string
	// CurrentDir builds from the source directory instead of a copy. Defaults to true.
	CurrentDir *bool

	NoErrorWithoutStart bool

	CPUQuota string
	Memory   string
	Verbose  bool

	DockerHost      string
	DockerTLSVerify string
	DockerCertPath  string
}

// IsQuiet returns whether docker output is reduced. Verbose always wins.
func (o DockerBuilderOptions) IsQuiet() bool {
	if o.Verbose {
		return false
	}
	if o.Quiet != nil {
		return *o.Quiet
	}
	return true
}

func (o DockerBuilderOptions) UseInlineCache() bool {
	return !o.NoCache && (o.InlineCache == nil || *o.InlineCache)
}

func (o DockerBuilderOptions) UseCurrentDir() bool {
	return o.CurrentDir == nil || *o.CurrentDir
}

// CacheFromImages returns the images to use as cache sources, none when caching is disabled.
func (o DockerBuilderOptions) CacheFromImages() []string {
	if o.NoCache {
		return nil
	}

	var images []string
	for _, image := range []string{o.CacheFrom, o.IncrementalCacheImage} {
		if image != "" && !util.StrSliceContains(images, image) {
			images = append(images, image)
		}
	}
	return images
}

// Validate checks the options before anything is built.
func (o DockerBuilderOptions) Validate() error {
	if o.Name != "" {
		if _, err := reference.ParseNormalizedNamed(o.Name); err != nil {
			return fmt.Errorf("invalid image name %q: %w", o.Name, err)
		}
	}

	for _, tag := range o.Tags {
		if _, err := reference.ParseNormalizedNamed(tag); err != nil {
			return fmt.Errorf("invalid tag %q: %w", tag, err)
		}
	}

	for _, image := range o.CacheFromImages() {
		if _, err := reference.ParseNormalizedNamed(image); err != nil {
			return fmt.Errorf("invalid cache image %q: %w", image, err)
		}
	}

	for _, p := range o.Platform {
		if _, err := platforms.Parse(p); err != nil {
			return fmt.Errorf("invalid platform %q: %w", p, err)
		}
	}

	if o.Memory != "" {
		if _, err := units.RAMInBytes(o.Memory); err != nil {
			return fmt.Errorf("invalid memory limit %q: %w", o.Memory, err)
		}
	}

	if o.CPUQuota != "" {
		if _, err := strconv.ParseInt(o.CPUQuota, 10, 64); err != nil {
			return fmt.Errorf("invalid cpu quota %q: must be an integer", o.CPUQuota)
		}
	}

	return nil
}

// NormalizedPlatforms returns the platforms in their canonical form.
func (o DockerBuilderOptions) NormalizedPlatforms() []string {
	var normalized []string
	for _, p := range o.Platform {
		platform, err := platforms.Parse(p)
		if err != nil {
			normalized = append(normalized, p)
			continue
		}
		normalized = append(normalized, platforms.Format(platforms.Normalize(platform)))
	}
	return normalized
}
