package build

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/require"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/config"
	"github.com/gh-core-team/tunaforge/internal/docker"
	"github.com/gh-core-team/tunaforge/internal/docker/dockertest"
	"github.com/gh-core-team/tunaforge/internal/iostreams"
)

func testFactory(t *testing.T, fake *dockertest.FakeAPIClient, cfg *config.Config) (*cmdutil.Factory, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	ios, _, out, errOut := iostreams.Test()
	return &cmdutil.Factory{
		WorkDir:   t.TempDir(),
		Version:   "test",
		IOStreams: ios,
		Config: func() (*config.Config, error) {
			return cfg, nil
		},
		Client: func(ctx context.Context) (*docker.Client, error) {
			return docker.NewClientFromAPI(fake, "test"), nil
		},
		CloseClient: func() {},
	}, out, errOut
}

func TestRun(t *testing.T) {
	var captured types.ImageBuildOptions
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
			captured = options
			return dockertest.SuccessfulBuild()(ctx, buildContext, options)
		},
	}
	f, _, errOut := testFactory(t, fake, config.Default())

	err := Run(context.Background(), f, &Options{})
	require.NoError(t, err)

	require.Equal(t, []string{"sabre/gh-core-team/nix-tunasync:0.1.1"}, captured.Tags)
	require.Equal(t, "Dockerfile", captured.Dockerfile)
	require.Equal(t, "true", captured.Labels[docker.LabelManaged])
	require.Equal(t, "sabre/gh-core-team/nix-tunasync", captured.Labels[docker.LabelImage])
	require.Equal(t, "0.1.1", captured.Labels[docker.LabelVersion])
	require.Contains(t, errOut.String(), "Successfully built image: sabre/gh-core-team/nix-tunasync:0.1.1")
}

func TestRunPassesBuildFlags(t *testing.T) {
	var captured types.ImageBuildOptions
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
			captured = options
			return dockertest.SuccessfulBuild()(ctx, buildContext, options)
		},
	}
	f, _, _ := testFactory(t, fake, config.Default())

	err := Run(context.Background(), f, &Options{
		NoCache:   true,
		Pull:      true,
		Platform:  "linux/arm64",
		ExtraTags: []string{"sabre/gh-core-team/nix-tunasync:latest"},
		BuildArgs: []string{"TARGETARCH=arm64"},
	})
	require.NoError(t, err)

	require.True(t, captured.NoCache)
	require.True(t, captured.PullParent)
	require.Equal(t, "linux/arm64", captured.Platform)
	require.Equal(t, []string{
		"sabre/gh-core-team/nix-tunasync:0.1.1",
		"sabre/gh-core-team/nix-tunasync:latest",
	}, captured.Tags)
	require.NotNil(t, captured.BuildArgs["TARGETARCH"])
	require.Equal(t, "arm64", *captured.BuildArgs["TARGETARCH"])
}

// The engine's progress stream reaches the user by default, on TTYs and in
// plain pipelines alike.
func TestRunStreamsBuildOutput(t *testing.T) {
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: dockertest.SuccessfulBuild(),
	}
	f, out, errOut := testFactory(t, fake, config.Default())

	err := Run(context.Background(), f, &Options{})
	require.NoError(t, err)

	require.Contains(t, errOut.String(), "Step 1/1 : FROM scratch")
	require.Empty(t, out.String())
}

func TestRunQuietSuppressesBuildOutput(t *testing.T) {
	var captured types.ImageBuildOptions
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
			captured = options
			return dockertest.SuccessfulBuild()(ctx, buildContext, options)
		},
	}
	f, _, errOut := testFactory(t, fake, config.Default())

	err := Run(context.Background(), f, &Options{Quiet: true})
	require.NoError(t, err)

	require.True(t, captured.SuppressOutput)
	require.NotContains(t, errOut.String(), "Step 1/1")
	require.Contains(t, errOut.String(), "Successfully built image")
}

func TestRunBuildFailure(t *testing.T) {
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: dockertest.FailingBuild("The command '/bin/sh -c pip3 install minio' returned a non-zero code: 1"),
	}
	f, _, errOut := testFactory(t, fake, config.Default())

	err := Run(context.Background(), f, &Options{})
	require.ErrorIs(t, err, cmdutil.SilentError)
	require.Contains(t, errOut.String(), "returned a non-zero code: 1")
}

func TestRunCustomDockerfileMissing(t *testing.T) {
	fake := &dockertest.FakeAPIClient{}
	cfg := config.Default()
	cfg.Build.Dockerfile = "missing/Dockerfile"
	f, _, errOut := testFactory(t, fake, cfg)

	err := Run(context.Background(), f, &Options{})
	require.ErrorIs(t, err, cmdutil.SilentError)
	require.Contains(t, errOut.String(), "not found")
	// The engine is never contacted when the Dockerfile is missing.
	require.False(t, fake.Called("ImageBuild"))
}

func TestParseBuildArgs(t *testing.T) {
	args, err := parseBuildArgs([]string{"KEY=value", "EMPTY=", "EQ=a=b"})
	require.NoError(t, err)
	require.Equal(t, "value", *args["KEY"])
	require.Equal(t, "", *args["EMPTY"])
	require.Equal(t, "a=b", *args["EQ"])

	args, err = parseBuildArgs(nil)
	require.NoError(t, err)
	require.Nil(t, args)

	_, err = parseBuildArgs([]string{"NOVALUE"})
	require.Error(t, err)
	var flagErr *cmdutil.FlagError
	require.ErrorAs(t, err, &flagErr)

	_, err = parseBuildArgs([]string{"=value"})
	require.Error(t, err)
}

func TestMergeTags(t *testing.T) {
	require.Equal(t, []string{"a:1"}, mergeTags("a:1", nil))
	require.Equal(t, []string{"a:1", "a:2"}, mergeTags("a:1", []string{"a:2", "a:1", "a:2"}))
}

func TestNewCmdBuild(t *testing.T) {
	f, _, _ := testFactory(t, &dockertest.FakeAPIClient{}, config.Default())
	cmd := NewCmdBuild(f)

	require.Equal(t, "build", cmd.Use)
	for _, flag := range []string{"no-cache", "pull", "quiet", "platform", "tag", "build-arg"} {
		require.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}
