package docker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDockerErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	err := ErrDockerNotRunning(underlying)

	require.ErrorIs(t, err, underlying)
	require.Equal(t, "Cannot connect to Docker daemon", err.Error())
}

func TestFormatUserError(t *testing.T) {
	err := ErrDockerNotRunning(errors.New("dial unix /var/run/docker.sock: connect: no such file"))
	out := err.FormatUserError()

	require.Contains(t, out, "Error: Cannot connect to Docker daemon")
	require.Contains(t, out, "Details: dial unix /var/run/docker.sock")
	require.Contains(t, out, "Next Steps:")
	require.Contains(t, out, "1. Ensure Docker is installed")
}

func TestFormatUserErrorWithoutDetails(t *testing.T) {
	err := ErrImageMissing("sabre/gh-core-team/nix-tunasync:0.1.1")
	out := err.FormatUserError()

	require.Contains(t, out, "Error: Local image 'sabre/gh-core-team/nix-tunasync:0.1.1' does not exist")
	require.NotContains(t, out, "Details:")
	require.Contains(t, out, "tunaforge build")
}

func TestBuildErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("running step: %w", ErrBuildStream("The command '/bin/sh -c false' returned a non-zero code: 1"))

	var buildErr *BuildError
	require.ErrorAs(t, wrapped, &buildErr)
	require.Equal(t, "build", buildErr.Op)
	require.Contains(t, buildErr.Message, "returned a non-zero code: 1")

	var publishErr *PublishError
	require.False(t, errors.As(wrapped, &publishErr))
}

func TestPublishErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("uploading: %w", ErrPushFailed("gh-core-team/nix-tunasync:0.1.1", errors.New("EOF")))

	var publishErr *PublishError
	require.ErrorAs(t, wrapped, &publishErr)
	require.Equal(t, "push", publishErr.Op)

	var buildErr *BuildError
	require.False(t, errors.As(wrapped, &buildErr))
}
