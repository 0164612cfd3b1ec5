package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestImageLabels(t *testing.T) {
	labels := ImageLabels("sabre/gh-core-team/nix-tunasync", "0.1.1", "1.0.0")

	require.Equal(t, "true", labels[LabelManaged])
	require.Equal(t, "sabre/gh-core-team/nix-tunasync", labels[LabelImage])
	require.Equal(t, "0.1.1", labels[LabelVersion])
	require.Equal(t, "1.0.0", labels[LabelToolVersion])

	created, err := time.Parse(time.RFC3339, labels[LabelCreated])
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), created, time.Minute)
}

func TestMergeLabels(t *testing.T) {
	merged := MergeLabels(
		map[string]string{"a": "1", "b": "2"},
		map[string]string{"b": "override", "c": "3"},
		nil,
	)

	require.Equal(t, map[string]string{"a": "1", "b": "override", "c": "3"}, merged)
}
