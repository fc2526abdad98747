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
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/errdefs"
)

// FakeAPIClient is an in-memory docker daemon.
type FakeAPIClient struct {
	// APIVersion is reported by Ping, ServerAPIVersion by ServerVersion.
	APIVersion       string
	ServerAPIVersion string
	ErrPing          bool
	ErrImagePull     bool
	ErrPullStream    bool

	tagToImageID map[string]string

	mu     sync.Mutex
	Pulled []string
	Closed bool
}

// Add makes an image available on the daemon.
func (f *FakeAPIClient) Add(tag, imageID string) *FakeAPIClient {
	if f.tagToImageID == nil {
		f.tagToImageID = make(map[string]string)
	}

	f.tagToImageID[imageID] = imageID
	f.tagToImageID[tag] = imageID
	if !strings.Contains(tag, ":") {
		f.tagToImageID[tag+":latest"] = imageID
	}
	return f
}

func (f *FakeAPIClient) Ping(context.Context) (types.Ping, error) {
	if f.ErrPing {
		return types.Ping{}, fmt.Errorf("cannot connect to the docker daemon")
	}
	return types.Ping{APIVersion: f.APIVersion}, nil
}

func (f *FakeAPIClient) ServerVersion(context.Context) (types.Version, error) {
	return types.Version{APIVersion: f.ServerAPIVersion}, nil
}

func (f *FakeAPIClient) ImageInspectWithRaw(_ context.Context, ref string) (types.ImageInspect, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.tagToImageID[ref]
	if !ok {
		return types.ImageInspect{}, nil, errdefs.NotFound(fmt.Errorf("no such image: %s", ref))
	}
	return types.ImageInspect{ID: id}, []byte{}, nil
}

func (f *FakeAPIClient) ImagePull(_ context.Context, ref string, _ image.PullOptions) (io.ReadCloser, error) {
	if f.ErrImagePull {
		return nil, fmt.Errorf("pull access denied for %s", ref)
	}

	f.mu.Lock()
	f.Pulled = append(f.Pulled, ref)
	f.mu.Unlock()

	if f.ErrPullStream {
		return io.NopCloser(strings.NewReader(`{"errorDetail":{"message":"manifest unknown"},"error":"manifest unknown"}`)), nil
	}
	return io.NopCloser(strings.NewReader(fmt.Sprintf(`{"status":"Pulled %s"}`, ref))), nil
}

func (f *FakeAPIClient) Close() error {
	f.Closed = true
	return nil
}
