package cmdutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/gh-core-team/tunaforge/internal/docker"
)

// FlagError indicates bad flags or arguments. When main encounters this error
// type, it prints the error message followed by the command's usage string.
type FlagError struct {
	err error
}

func (e *FlagError) Error() string { return e.err.Error() }
func (e *FlagError) Unwrap() error { return e.err }

// FlagErrorf creates a FlagError with a formatted message.
func FlagErrorf(format string, args ...any) error {
	return &FlagError{err: fmt.Errorf(format, args...)}
}

// SilentError signals that the error has already been displayed to the user.
// main will exit non-zero but not print anything additional.
var SilentError = errors.New("SilentError")

// PrintError writes an error headline to w.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintf(w, "Error: %s\n", msg)
}

// HandleError prints err to w in its most useful form and returns SilentError
// so the caller exits non-zero without double-printing.
func HandleError(w io.Writer, err error) error {
	var buildErr *docker.BuildError
	var publishErr *docker.PublishError
	var dockerErr *docker.DockerError

	switch {
	case errors.As(err, &buildErr):
		fmt.Fprint(w, buildErr.FormatUserError())
	case errors.As(err, &publishErr):
		fmt.Fprint(w, publishErr.FormatUserError())
	case errors.As(err, &dockerErr):
		fmt.Fprint(w, dockerErr.FormatUserError())
	default:
		PrintError(w, err.Error())
	}
	return SilentError
}
