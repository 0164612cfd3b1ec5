package cmdutil

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gh-core-team/tunaforge/internal/docker"
)

func TestFlagErrorf(t *testing.T) {
	err := FlagErrorf("invalid --build-arg %q", "NOVALUE")

	var flagErr *FlagError
	require.ErrorAs(t, err, &flagErr)
	require.Equal(t, `invalid --build-arg "NOVALUE"`, err.Error())
}

func TestHandleErrorBuildError(t *testing.T) {
	var buf bytes.Buffer
	err := HandleError(&buf, docker.ErrBuildStream("exit code 1"))

	require.ErrorIs(t, err, SilentError)
	require.Contains(t, buf.String(), "Error: build error: exit code 1")
	require.Contains(t, buf.String(), "Next Steps:")
}

func TestHandleErrorPublishError(t *testing.T) {
	var buf bytes.Buffer
	err := HandleError(&buf, docker.ErrImageMissing("sabre/gh-core-team/nix-tunasync:0.1.1"))

	require.ErrorIs(t, err, SilentError)
	require.Contains(t, buf.String(), "does not exist")
	require.Contains(t, buf.String(), "tunaforge build")
}

func TestHandleErrorDockerError(t *testing.T) {
	var buf bytes.Buffer
	err := HandleError(&buf, docker.ErrDockerNotRunning(errors.New("connection refused")))

	require.ErrorIs(t, err, SilentError)
	require.Contains(t, buf.String(), "Cannot connect to Docker daemon")
}

func TestHandleErrorWrapped(t *testing.T) {
	var buf bytes.Buffer
	wrapped := fmt.Errorf("release: %w", docker.ErrBuildStream("exit code 1"))

	require.ErrorIs(t, HandleError(&buf, wrapped), SilentError)
	require.Contains(t, buf.String(), "build error: exit code 1")
}

func TestHandleErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	err := HandleError(&buf, errors.New("something broke"))

	require.ErrorIs(t, err, SilentError)
	require.Equal(t, "Error: something broke\n", buf.String())
}
