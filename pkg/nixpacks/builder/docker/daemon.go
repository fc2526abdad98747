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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blang/semver"
	"github.com/docker/cli/cli/connhelper"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/tlsconfig"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/errgroup"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/output/log"
	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/version"
)

// daemonAPI is the part of the docker Engine API used before a build.
type daemonAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ServerVersion(ctx context.Context) (types.Version, error)
	ImageInspectWithRaw(ctx context.Context, image string) (types.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	Close() error
}

// For testing
var (
	NewDaemonClient = newDaemonClient
)

// newDaemonClient returns a client of the daemon the docker CLI will talk to.
func newDaemonClient(opts DockerBuilderOptions) (daemonAPI, error) {
	clientOpts := []client.Opt{client.FromEnv}

	if host := dockerHost(opts); host != "" {
		helper, err := connhelper.GetConnectionHelper(host)
		if err == nil && helper != nil {
			httpClient := &http.Client{
				Transport: &http.Transport{
					DialContext: helper.Dialer,
				},
			}
			clientOpts = append(clientOpts, client.WithHTTPClient(httpClient), client.WithHost(helper.Host))
		} else {
			httpClient, err := tlsHTTPClient(opts)
			if err != nil {
				return nil, err
			}
			if httpClient != nil {
				clientOpts = append(clientOpts, client.WithHTTPClient(httpClient))
			}
			clientOpts = append(clientOpts, client.WithHost(host))
		}
	}

	clientOpts = append(clientOpts,
		client.WithHTTPHeaders(map[string]string{"User-Agent": version.UserAgent()}),
		client.WithAPIVersionNegotiation())

	api, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("error getting docker client: %w", err)
	}
	return api, nil
}

func dockerHost(opts DockerBuilderOptions) string {
	if opts.DockerHost != "" {
		return opts.DockerHost
	}
	return os.Getenv("DOCKER_HOST")
}

func tlsVerify(opts DockerBuilderOptions) bool {
	switch strings.ToLower(opts.DockerTLSVerify) {
	case "", "0", "false":
		return false
	}
	return true
}

// certPath returns where the TLS material of the daemon is, "" when TLS is not configured.
func certPath(opts DockerBuilderOptions) (string, error) {
	if opts.DockerCertPath != "" {
		return homedir.Expand(opts.DockerCertPath)
	}
	if path := os.Getenv("DOCKER_CERT_PATH"); path != "" {
		return path, nil
	}
	if tlsVerify(opts) {
		return homedir.Expand("~/.docker")
	}
	return "", nil
}

func tlsHTTPClient(opts DockerBuilderOptions) (*http.Client, error) {
	dir, err := certPath(opts)
	if err != nil || dir == "" {
		return nil, err
	}

	tlsc, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             filepath.Join(dir, "ca.pem"),
		CertFile:           filepath.Join(dir, "cert.pem"),
		KeyFile:            filepath.Join(dir, "key.pem"),
		InsecureSkipVerify: !tlsVerify(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("loading docker TLS config from %s: %w", dir, err)
	}

	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: tlsc,
		},
		CheckRedirect: client.CheckRedirect,
	}, nil
}

// dockerEnv is the environment of the docker CLI on top of the process environment.
func dockerEnv(opts DockerBuilderOptions) []string {
	env := []string{"DOCKER_BUILDKIT=1"}
	if opts.DockerHost != "" {
		env = append(env, "DOCKER_HOST="+opts.DockerHost)
	}
	if opts.DockerTLSVerify != "" {
		env = append(env, "DOCKER_TLS_VERIFY="+opts.DockerTLSVerify)
	}
	if opts.DockerCertPath != "" {
		if path, err := homedir.Expand(opts.DockerCertPath); err == nil {
			env = append(env, "DOCKER_CERT_PATH="+path)
		}
	}
	return env
}

// preflight checks the daemon supports BuildKit cache mounts and pulls the
// cache images that are missing locally.
func preflight(ctx context.Context, out io.Writer, api daemonAPI, cacheFrom []string) error {
	ping, err := api.Ping(ctx)
	if err != nil {
		return fmt.Errorf("pinging docker daemon: %w", err)
	}

	apiVersion := ping.APIVersion
	if apiVersion == "" {
		v, err := api.ServerVersion(ctx)
		if err != nil {
			return fmt.Errorf("getting docker version: %w", err)
		}
		apiVersion = v.APIVersion
	}
	if err := checkAPIVersion(apiVersion); err != nil {
		log.Entry(ctx).Warn(err)
	}

	return pullMissing(ctx, out, api, cacheFrom)
}

func checkAPIVersion(apiVersion string) error {
	current, err := semver.ParseTolerant(apiVersion)
	if err != nil {
		return fmt.Errorf("unknown docker API version %q", apiVersion)
	}

	if current.LT(semver.MustParse(constants.MinBuildKitAPIVersion)) {
		return fmt.Errorf("docker API version %s is older than %s, cache mounts may not be supported", apiVersion, constants.MinBuildKitAPIVersion)
	}
	return nil
}

// pullMissing pulls the images that are not present on the daemon, in parallel.
func pullMissing(ctx context.Context, out io.Writer, api daemonAPI, images []string) error {
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)

	for _, img := range images {
		g.Go(func() error {
			if _, _, err := api.ImageInspectWithRaw(gCtx, img); err == nil {
				return nil
			}

			log.Entry(gCtx).Debugf("Pulling cache image %s", img)
			rc, err := api.ImagePull(gCtx, img, image.PullOptions{})
			if err != nil {
				return fmt.Errorf("pulling %s: %w", img, err)
			}
			defer rc.Close()

			var buf bytes.Buffer
			if err := jsonmessage.DisplayJSONMessagesStream(rc, &buf, 0, false, nil); err != nil {
				return fmt.Errorf("pulling %s: %w", img, err)
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = out.Write(buf.Bytes())
			return err
		})
	}

	return g.Wait()
}
