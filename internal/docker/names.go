package docker

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
	"github.com/docker/docker/registry"
)

// LocalTag returns the local build tag: name:version.
func LocalTag(name, version string) string {
	return fmt.Sprintf("%s:%s", name, version)
}

// RemoteRepository derives the remote repository from the local image name by
// stripping the local namespace prefix. An explicit override wins. The same
// name always yields the same repository, so a name or version override can
// never diverge between the build tag and the publish coordinate.
func RemoteRepository(name, localPrefix, override string) string {
	if override != "" {
		return override
	}
	if localPrefix != "" {
		return strings.TrimPrefix(name, localPrefix+"/")
	}
	return name
}

// RemoteCoordinate returns the full publish coordinate: repository:version.
func RemoteCoordinate(name, version, localPrefix, override string) string {
	return fmt.Sprintf("%s:%s", RemoteRepository(name, localPrefix, override), version)
}

// ValidateReference checks that ref is a well-formed image reference.
func ValidateReference(ref string) error {
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	return nil
}

// RegistryHost resolves the registry auth key for an image reference.
// Docker Hub references map to the legacy index server address that
// credential stores key on.
func RegistryHost(ref string) (string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	domain := reference.Domain(named)
	if domain == "docker.io" {
		return registry.IndexServer, nil
	}
	return domain, nil
}
