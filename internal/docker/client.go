package docker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/gh-core-team/tunaforge/internal/logger"
)

// APIClient is the subset of the Docker SDK client tunaforge uses.
// *client.Client satisfies it; dockertest.FakeAPIClient fakes it.
type APIClient interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
	ImageTag(ctx context.Context, source, target string) error
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// Client wraps the Docker Engine API with tunaforge's label conventions.
type Client struct {
	api     APIClient
	version string

	// AuthResolver overrides registry auth resolution when non-nil.
	// Tests set this to avoid reading the real docker CLI config.
	AuthResolver func(ctx context.Context, ref string) (string, error)
}

// NewClient connects to the Docker daemon and verifies the connection.
// version is the tunaforge version recorded in image labels.
func NewClient(ctx context.Context, version string) (*Client, error) {
	api, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, ErrDockerNotRunning(err)
	}

	c := &Client{api: api, version: version}
	if err := c.HealthCheck(ctx); err != nil {
		api.Close()
		return nil, err
	}
	return c, nil
}

// NewClientFromAPI wraps an existing API client. Used by tests.
func NewClientFromAPI(api APIClient, version string) *Client {
	return &Client{api: api, version: version}
}

// HealthCheck verifies the Docker daemon is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return ErrDockerNotRunning(err)
	}
	return nil
}

// Close releases the underlying Docker connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// TagImage adds an additional tag to an existing local image.
func (c *Client) TagImage(ctx context.Context, source, target string) error {
	if err := c.api.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", source, target, err)
	}
	return nil
}

// ImageExists checks if an image exists locally.
func (c *Client) ImageExists(ctx context.Context, ref string) (bool, error) {
	_, _, err := c.api.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}
	return true, nil
}

// ListImages returns all tunaforge-managed images.
func (c *Client) ListImages(ctx context.Context) ([]image.Summary, error) {
	summaries, err := c.api.ImageList(ctx, image.ListOptions{
		Filters: ManagedFilter(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return summaries, nil
}

// BuildImageOpts contains options for building an image.
type BuildImageOpts struct {
	Tags           []string           // -t, --tag (multiple allowed)
	Dockerfile     string             // -f, --file (path within the context)
	BuildArgs      map[string]*string // --build-arg KEY=VALUE
	NoCache        bool               // --no-cache
	Labels         map[string]string  // merged with tunaforge labels
	Pull           bool               // --pull (maps to PullParent)
	Platform       string             // --platform
	SuppressOutput bool               // -q, --quiet
	Output         io.Writer          // destination for build progress lines
}

// BuildImage builds an image from a tar build context.
// The engine's own error text is surfaced verbatim via BuildError.
func (c *Client) BuildImage(ctx context.Context, buildContext io.Reader, opts BuildImageOpts) error {
	options := types.ImageBuildOptions{
		Tags:           opts.Tags,
		Dockerfile:     opts.Dockerfile,
		Remove:         true,
		NoCache:        opts.NoCache,
		BuildArgs:      opts.BuildArgs,
		Labels:         MergeLabels(opts.Labels),
		PullParent:     opts.Pull,
		Platform:       opts.Platform,
		SuppressOutput: opts.SuppressOutput,
	}

	resp, err := c.api.ImageBuild(ctx, buildContext, options)
	if err != nil {
		return ErrBuildFailed(err)
	}
	defer resp.Body.Close()

	// Even with SuppressOutput the stream must be drained for errors.
	out := opts.Output
	if opts.SuppressOutput {
		out = nil
	}
	return processBuildOutput(resp.Body, out)
}

// buildEvent represents a Docker build stream event.
type buildEvent struct {
	Stream      string `json:"stream"`
	Error       string `json:"error"`
	ErrorDetail struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
}

// processBuildOutput consumes the build stream, forwarding progress lines to
// out (when non-nil) and converting engine error events into a BuildError.
func processBuildOutput(reader io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var parseErrors int

	for scanner.Scan() {
		var event buildEvent

		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			parseErrors++
			logger.Debug().
				Err(err).
				Str("raw", string(scanner.Bytes())).
				Msg("failed to parse build output event")
			// After many consecutive failures, consider this an error condition
			if parseErrors > 10 {
				return ErrBuildFailed(fmt.Errorf("build output stream appears corrupted: %d consecutive parse failures", parseErrors))
			}
			continue
		}
		parseErrors = 0

		if event.Error != "" {
			return ErrBuildStream(event.Error)
		}
		if event.ErrorDetail.Message != "" {
			return ErrBuildStream(event.ErrorDetail.Message)
		}

		if stream := strings.TrimSpace(event.Stream); stream != "" {
			if out != nil {
				fmt.Fprintln(out, stream)
			} else {
				logger.Debug().Msg(stream)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return ErrBuildFailed(fmt.Errorf("error reading build output: %w", err))
	}

	logger.Debug().Msg("image build complete")
	return nil
}
