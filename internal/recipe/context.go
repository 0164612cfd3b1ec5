package recipe

import (
	"archive/tar"
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/docker/docker/pkg/archive"
)

//go:embed scripts/nix-channels.py
var helperScript []byte

// HelperScript returns the embedded mirror helper script.
func HelperScript() []byte {
	return helperScript
}

// BuildContext creates a tar build context containing the rendered Dockerfile
// and the helper script.
func (g *Generator) BuildContext(dockerfile []byte) (io.Reader, error) {
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)

	if err := addFileToTar(tw, "Dockerfile", dockerfile, 0644); err != nil {
		return nil, err
	}
	if err := addFileToTar(tw, HelperScriptName, helperScript, 0755); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

// ContextFromDir creates a tar build context from a directory, for custom
// Dockerfiles.
func ContextFromDir(dir string) (io.Reader, error) {
	ctx, err := archive.TarWithOptions(dir, &archive.TarOptions{
		ExcludePatterns: []string{".git"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create build context from %s: %w", dir, err)
	}
	return ctx, nil
}

// addFileToTar adds one file to a tar archive.
func addFileToTar(tw *tar.Writer, name string, content []byte, mode int64) error {
	header := &tar.Header{
		Name: name,
		Mode: mode,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to write tar content for %s: %w", name, err)
	}
	return nil
}
