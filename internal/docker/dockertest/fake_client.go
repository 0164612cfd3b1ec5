// Package dockertest provides a test double for the Docker API client.
package dockertest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
)

// FakeAPIClient is a test double for docker.APIClient using the function-field
// pattern (Docker CLI convention). Each method has a corresponding Fn field:
// if the field is set the fake delegates to it and records the call; if it is
// nil the call panics with "not implemented: MethodName" for fail-loud
// behavior on unexpected calls.
type FakeAPIClient struct {
	// mu protects Calls from concurrent access.
	mu sync.Mutex

	// Calls records the method names invoked on this fake, in order.
	Calls []string

	ImageBuildFn          func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	ImagePushFn           func(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
	ImageTagFn            func(ctx context.Context, source, target string) error
	ImageInspectWithRawFn func(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImageListFn           func(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	PingFn                func(ctx context.Context) (types.Ping, error)
	CloseFn               func() error
}

// record appends a method name to the call log (thread-safe).
func (f *FakeAPIClient) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, method)
}

// Called reports whether method was invoked on this fake.
func (f *FakeAPIClient) Called(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == method {
			return true
		}
	}
	return false
}

func (f *FakeAPIClient) ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
	f.record("ImageBuild")
	if f.ImageBuildFn == nil {
		panic("not implemented: ImageBuild")
	}
	return f.ImageBuildFn(ctx, buildContext, options)
}

func (f *FakeAPIClient) ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error) {
	f.record("ImagePush")
	if f.ImagePushFn == nil {
		panic("not implemented: ImagePush")
	}
	return f.ImagePushFn(ctx, ref, options)
}

func (f *FakeAPIClient) ImageTag(ctx context.Context, source, target string) error {
	f.record("ImageTag")
	if f.ImageTagFn == nil {
		panic("not implemented: ImageTag")
	}
	return f.ImageTagFn(ctx, source, target)
}

func (f *FakeAPIClient) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	f.record("ImageInspectWithRaw")
	if f.ImageInspectWithRawFn == nil {
		panic("not implemented: ImageInspectWithRaw")
	}
	return f.ImageInspectWithRawFn(ctx, imageID)
}

func (f *FakeAPIClient) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	f.record("ImageList")
	if f.ImageListFn == nil {
		panic("not implemented: ImageList")
	}
	return f.ImageListFn(ctx, options)
}

func (f *FakeAPIClient) Ping(ctx context.Context) (types.Ping, error) {
	f.record("Ping")
	if f.PingFn == nil {
		return types.Ping{}, nil
	}
	return f.PingFn(ctx)
}

func (f *FakeAPIClient) Close() error {
	f.record("Close")
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

// BuildStream returns a build response body streaming the given JSON events.
func BuildStream(events ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(events, "\n")))
}

// SuccessfulBuild returns an ImageBuildFn that streams a minimal successful build.
func SuccessfulBuild() func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
	return func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
		return types.ImageBuildResponse{
			Body: BuildStream(
				`{"stream":"Step 1/1 : FROM scratch"}`,
				`{"stream":"Successfully built 0123456789ab"}`,
			),
		}, nil
	}
}

// FailingBuild returns an ImageBuildFn whose stream carries an engine error event.
func FailingBuild(message string) func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
	return func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
		return types.ImageBuildResponse{
			Body: BuildStream(fmt.Sprintf(`{"error":%q,"errorDetail":{"message":%q}}`, message, message)),
		}, nil
	}
}

// SuccessfulPush returns an ImagePushFn that streams a push completing with
// the given digest.
func SuccessfulPush(dgst string) func(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error) {
	return func(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error) {
		stream := fmt.Sprintf(`{"status":"Pushing","id":"layer1"}
{"status":"Pushed","id":"layer1"}
{"aux":{"tag":"x","digest":%q,"size":1234}}`, dgst)
		return io.NopCloser(strings.NewReader(stream)), nil
	}
}
