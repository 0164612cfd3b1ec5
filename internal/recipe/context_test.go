package recipe

import (
	"archive/tar"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gh-core-team/tunaforge/internal/config"
)

func TestHelperScriptEmbedded(t *testing.T) {
	script := HelperScript()

	require.True(t, strings.HasPrefix(string(script), "#!/usr/bin/env python3"))
	require.Contains(t, string(script), "minio")
}

func TestBuildContext(t *testing.T) {
	gen := NewGenerator(config.Default(), t.TempDir())
	dockerfile, err := gen.Generate()
	require.NoError(t, err)

	ctx, err := gen.BuildContext(dockerfile)
	require.NoError(t, err)

	entries := map[string]*tar.Header{}
	contents := map[string][]byte{}
	tr := tar.NewReader(ctx)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[hdr.Name] = hdr
		contents[hdr.Name] = data
	}

	require.Contains(t, entries, "Dockerfile")
	require.Contains(t, entries, HelperScriptName)

	require.Equal(t, dockerfile, contents["Dockerfile"])
	require.Equal(t, HelperScript(), contents[HelperScriptName])

	// The helper script must stay executable inside the image.
	require.Equal(t, int64(0755), entries[HelperScriptName].Mode)
	require.Equal(t, int64(0644), entries["Dockerfile"].Mode)
}
