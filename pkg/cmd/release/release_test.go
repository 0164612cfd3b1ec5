package release

import (
	"context"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/require"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/config"
	"github.com/gh-core-team/tunaforge/internal/docker"
	"github.com/gh-core-team/tunaforge/internal/docker/dockertest"
	"github.com/gh-core-team/tunaforge/internal/iostreams"
)

const testDigest = "sha256:6c3c624b58dbbcd3c0dd82b4c53f04194d1247c6eebdaab7c610cf7d66709b3b"

func testFactory(t *testing.T, fake *dockertest.FakeAPIClient) *cmdutil.Factory {
	t.Helper()
	ios, _, _, _ := iostreams.Test()
	return &cmdutil.Factory{
		WorkDir:   t.TempDir(),
		Version:   "test",
		IOStreams: ios,
		Config: func() (*config.Config, error) {
			return config.Default(), nil
		},
		Client: func(ctx context.Context) (*docker.Client, error) {
			c := docker.NewClientFromAPI(fake, "test")
			c.AuthResolver = func(ctx context.Context, ref string) (string, error) {
				return "dGVzdA==", nil
			}
			return c, nil
		},
		CloseClient: func() {},
	}
}

func TestReleaseBuildsThenPublishes(t *testing.T) {
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: dockertest.SuccessfulBuild(),
		ImageInspectWithRawFn: func(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
			return types.ImageInspect{ID: "sha256:abc"}, nil, nil
		},
		ImageTagFn: func(ctx context.Context, source, target string) error {
			return nil
		},
		ImagePushFn: dockertest.SuccessfulPush(testDigest),
	}
	f := testFactory(t, fake)

	cmd := NewCmdRelease(f)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	// The push happens strictly after the build.
	require.Equal(t, "ImageBuild", fake.Calls[0])
	require.True(t, fake.Called("ImagePush"))
}

// A failed build must abort the release before anything touches the registry.
func TestReleaseAbortsOnBuildFailure(t *testing.T) {
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: dockertest.FailingBuild("The command '/bin/sh -c false' returned a non-zero code: 1"),
	}
	f := testFactory(t, fake)

	cmd := NewCmdRelease(f)
	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.ErrorIs(t, err, cmdutil.SilentError)
	require.True(t, fake.Called("ImageBuild"))
	require.False(t, fake.Called("ImageTag"))
	require.False(t, fake.Called("ImagePush"))
}

// Rerunning a release with the same name and version overwrites the tag and
// republishes without error.
func TestReleaseRerunSucceeds(t *testing.T) {
	fake := &dockertest.FakeAPIClient{
		ImageBuildFn: dockertest.SuccessfulBuild(),
		ImageInspectWithRawFn: func(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
			return types.ImageInspect{ID: "sha256:abc"}, nil, nil
		},
		ImageTagFn: func(ctx context.Context, source, target string) error {
			return nil
		},
		ImagePushFn: dockertest.SuccessfulPush(testDigest),
	}
	f := testFactory(t, fake)

	for i := 0; i < 2; i++ {
		cmd := NewCmdRelease(f)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())
	}
	require.Len(t, fake.Calls, 8)
}

func TestNewCmdRelease(t *testing.T) {
	f := testFactory(t, &dockertest.FakeAPIClient{})
	cmd := NewCmdRelease(f)

	require.Equal(t, "release", cmd.Use)
	for _, flag := range []string{"no-cache", "pull", "platform", "repository"} {
		require.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}
