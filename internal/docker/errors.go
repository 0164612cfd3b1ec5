package docker

import (
	"fmt"
	"strings"
)

// DockerError represents a user-friendly engine error with remediation steps.
// It wraps underlying Docker SDK errors with context and actionable guidance.
type DockerError struct {
	Op        string   // Operation that failed (e.g., "connect", "build", "push")
	Err       error    // Underlying error
	Message   string   // Human-readable message
	NextSteps []string // Suggested remediation steps
}

func (e *DockerError) Error() string {
	return e.Message
}

func (e *DockerError) Unwrap() error {
	return e.Err
}

// FormatUserError formats the error for display to users with next steps.
func (e *DockerError) FormatUserError() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Message))

	if e.Err != nil {
		sb.WriteString(fmt.Sprintf("  Details: %s\n", e.Err.Error()))
	}

	if len(e.NextSteps) > 0 {
		sb.WriteString("\nNext Steps:\n")
		for i, step := range e.NextSteps {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	return sb.String()
}

// BuildError reports a failure while constructing the image: malformed
// instructions, missing packages or files, network fetch failures. The build
// sequence aborts immediately; nothing is retried.
type BuildError struct {
	DockerError
}

// PublishError reports a failure while uploading the image: authentication,
// network, or a missing local source image.
type PublishError struct {
	DockerError
}

// ErrDockerNotRunning returns an error for when the Docker daemon is not accessible.
func ErrDockerNotRunning(err error) *DockerError {
	return &DockerError{
		Op:      "connect",
		Err:     err,
		Message: "Cannot connect to Docker daemon",
		NextSteps: []string{
			"Ensure Docker is installed",
			"Start Docker Desktop (macOS/Windows) or run 'sudo systemctl start docker' (Linux)",
			"Check if Docker socket is accessible: ls -la /var/run/docker.sock",
		},
	}
}

// ErrBuildFailed returns an error for when the engine rejects the build request.
func ErrBuildFailed(err error) *BuildError {
	return &BuildError{DockerError{
		Op:      "build",
		Err:     err,
		Message: "Failed to build image",
		NextSteps: []string{
			"Check the Dockerfile syntax",
			"Verify all referenced files exist in the build context",
			"Verify network access for base layer and package downloads",
		},
	}}
}

// ErrBuildStream returns an error carrying the engine's own failure text from
// the build output stream, verbatim.
func ErrBuildStream(message string) *BuildError {
	return &BuildError{DockerError{
		Op:      "build",
		Message: fmt.Sprintf("build error: %s", message),
		NextSteps: []string{
			"Review the build output above for the failing step",
			"Rerun with --no-cache if a cached layer looks stale",
		},
	}}
}

// ErrDockerfileMissing returns an error for a configured Dockerfile path that
// does not exist. Surfaced before the engine is contacted.
func ErrDockerfileMissing(path string) *BuildError {
	return &BuildError{DockerError{
		Op:      "build",
		Message: fmt.Sprintf("Dockerfile '%s' not found", path),
		NextSteps: []string{
			"Check build.dockerfile in tunaforge.yaml",
			"Remove the setting to use the generated recipe",
		},
	}}
}

// ErrPushFailed returns an error for a failed upload.
func ErrPushFailed(ref string, err error) *PublishError {
	return &PublishError{DockerError{
		Op:      "push",
		Err:     err,
		Message: fmt.Sprintf("Failed to publish image '%s'", ref),
		NextSteps: []string{
			"Verify network access to the registry",
			"Check you are logged in: docker login",
		},
	}}
}

// ErrRegistryAuth returns an error for registry authentication failures.
func ErrRegistryAuth(host string, err error) *PublishError {
	return &PublishError{DockerError{
		Op:      "auth",
		Err:     err,
		Message: fmt.Sprintf("Authentication failed for registry '%s'", host),
		NextSteps: []string{
			"Run 'docker login " + host + "' and retry",
			"Check credentials in ~/.docker/config.json",
		},
	}}
}

// ErrImageMissing returns an error for publishing an image that was never
// built locally. The build step must succeed first.
func ErrImageMissing(ref string) *PublishError {
	return &PublishError{DockerError{
		Op:      "push",
		Message: fmt.Sprintf("Local image '%s' does not exist", ref),
		NextSteps: []string{
			"Run 'tunaforge build' first",
			"Or run 'tunaforge release' to build and publish in one step",
		},
	}}
}
