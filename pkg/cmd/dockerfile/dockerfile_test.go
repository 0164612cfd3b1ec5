package dockerfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/config"
	"github.com/gh-core-team/tunaforge/internal/iostreams"
)

func TestDockerfile(t *testing.T) {
	ios, _, out, _ := iostreams.Test()
	f := &cmdutil.Factory{
		WorkDir:   t.TempDir(),
		IOStreams: ios,
		Config: func() (*config.Config, error) {
			cfg := config.Default()
			cfg.Build.BaseImage = "debian:bookworm"
			return cfg, nil
		},
	}

	cmd := NewCmdDockerfile(f)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	require.Contains(t, out.String(), "FROM debian:bookworm")
	require.Contains(t, out.String(), "COPY nix-channels.py")
	require.Contains(t, out.String(), `CMD ["/bin/bash"]`)
}
