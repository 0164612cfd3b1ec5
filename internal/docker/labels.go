// Package docker wraps the Docker Engine API with tunaforge's label
// conventions: every image tunaforge builds carries a managed label so list
// operations only ever see tunaforge-built images.
package docker

import (
	"time"

	"github.com/docker/docker/api/types/filters"

	"github.com/gh-core-team/tunaforge/internal/config"
)

// Label keys for managed images.
const (
	// LabelPrefix is the prefix for all tunaforge labels.
	LabelPrefix = config.LabelDomain + "."

	// LabelManaged marks an image as built by tunaforge.
	LabelManaged = LabelPrefix + "managed"

	// LabelImage stores the configured image name.
	LabelImage = LabelPrefix + "image"

	// LabelVersion stores the image version tag.
	LabelVersion = LabelPrefix + "version"

	// LabelToolVersion stores the tunaforge version that built the image.
	LabelToolVersion = LabelPrefix + "tool-version"

	// LabelCreated stores the build timestamp.
	LabelCreated = LabelPrefix + "created"
)

// ManagedLabelValue is the value for the managed label.
const ManagedLabelValue = "true"

// ImageLabels returns the labels applied to a built image.
func ImageLabels(name, version, toolVersion string) map[string]string {
	return map[string]string{
		LabelManaged:     ManagedLabelValue,
		LabelImage:       name,
		LabelVersion:     version,
		LabelToolVersion: toolVersion,
		LabelCreated:     time.Now().Format(time.RFC3339),
	}
}

// ManagedFilter returns a filter matching tunaforge-managed images.
func ManagedFilter() filters.Args {
	return filters.NewArgs(
		filters.Arg("label", LabelManaged+"="+ManagedLabelValue),
	)
}

// MergeLabels combines label maps, later maps winning on key conflicts.
func MergeLabels(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
