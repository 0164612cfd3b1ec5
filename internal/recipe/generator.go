// Package recipe renders the Dockerfile for the nix-tunasync mirror image
// and assembles build contexts for the engine.
package recipe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gh-core-team/tunaforge/internal/config"
)

// HelperScriptName is the helper script copied into the image. It is invoked
// later by the external mirror orchestration, not at build time.
const HelperScriptName = "nix-channels.py"

// GenerateContext holds the data for Dockerfile template rendering.
type GenerateContext struct {
	BaseImage      string
	DebianCodename string
	NixVersion     string
	NixStagingDir  string
	MountPoint     string
	ScriptPath     string
}

// Generator creates Dockerfiles and build contexts from configuration.
type Generator struct {
	config  *config.Config
	workDir string
}

// NewGenerator creates a new Generator.
func NewGenerator(cfg *config.Config, workDir string) *Generator {
	return &Generator{
		config:  cfg,
		workDir: workDir,
	}
}

// Generate renders the Dockerfile from configuration.
func (g *Generator) Generate() ([]byte, error) {
	tmpl, err := template.New("Dockerfile").Parse(dockerfileTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Dockerfile template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, g.templateContext()); err != nil {
		return nil, fmt.Errorf("failed to render Dockerfile template: %w", err)
	}
	return buf.Bytes(), nil
}

// UseCustomDockerfile checks if a custom Dockerfile should be used instead of
// the generated recipe.
func (g *Generator) UseCustomDockerfile() bool {
	return g.config.Build.Dockerfile != ""
}

// CustomDockerfilePath returns the resolved path of the custom Dockerfile.
func (g *Generator) CustomDockerfilePath() string {
	path := g.config.Build.Dockerfile
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.workDir, path)
	}
	return path
}

// ContextDir returns the build context directory for custom Dockerfiles.
func (g *Generator) ContextDir() string {
	if g.config.Build.Context != "" {
		path := g.config.Build.Context
		if !filepath.IsAbs(path) {
			path = filepath.Join(g.workDir, path)
		}
		return path
	}
	return g.workDir
}

// CustomDockerfileExists reports whether the configured custom Dockerfile is
// present on disk.
func (g *Generator) CustomDockerfileExists() bool {
	_, err := os.Stat(g.CustomDockerfilePath())
	return err == nil
}

func (g *Generator) templateContext() GenerateContext {
	b := g.config.Build
	defaults := config.Default().Build

	ctx := GenerateContext{
		BaseImage:     b.BaseImage,
		NixVersion:    b.NixVersion,
		NixStagingDir: b.NixStagingDir,
		MountPoint:    b.MountPoint,
		ScriptPath:    b.ScriptPath,
	}
	if ctx.BaseImage == "" {
		ctx.BaseImage = defaults.BaseImage
	}
	if ctx.NixVersion == "" {
		ctx.NixVersion = defaults.NixVersion
	}
	if ctx.NixStagingDir == "" {
		ctx.NixStagingDir = defaults.NixStagingDir
	}
	if ctx.MountPoint == "" {
		ctx.MountPoint = defaults.MountPoint
	}
	if ctx.ScriptPath == "" {
		ctx.ScriptPath = defaults.ScriptPath
	}
	ctx.DebianCodename = debianCodename(ctx.BaseImage)
	return ctx
}

// debianCodename extracts the Debian release codename from a base image
// reference so the gcsfuse apt channel tracks the configured base. Unknown
// bases fall back to the default base's codename.
func debianCodename(baseImage string) string {
	tag := baseImage
	if i := strings.LastIndex(baseImage, ":"); i >= 0 {
		tag = baseImage[i+1:]
	}
	tag = strings.TrimSuffix(tag, "-slim")
	switch tag {
	case "buster", "bullseye", "bookworm", "trixie":
		return tag
	}
	return "bullseye"
}

// dockerfileTemplate is the generated recipe for the nix-tunasync image.
//
// The arch-conditional step keys off TARGETARCH so cross-platform builds
// install native build libraries for the image's platform, not the host's.
const dockerfileTemplate = `FROM {{.BaseImage}}

ARG TARGETARCH=amd64
ARG DEBIAN_FRONTEND=noninteractive

RUN apt-get update && apt-get install -y --no-install-recommends \
        ca-certificates curl gnupg xz-utils fuse \
        python3 python3-pip python3-setuptools \
        python3-requests python3-pyquery python3-pytz \
    && rm -rf /var/lib/apt/lists/*

# Prebuilt wheels for the MinIO SDK's crypto deps only exist for x86; other
# targets compile from source.
RUN if [ "$TARGETARCH" != "amd64" ] && [ "$TARGETARCH" != "386" ]; then \
        apt-get update && apt-get install -y --no-install-recommends \
            build-essential python3-dev libssl-dev libffi-dev \
        && rm -rf /var/lib/apt/lists/*; \
    fi

RUN pip3 install minio

RUN curl -fsSL https://packages.cloud.google.com/apt/doc/apt-key.gpg | apt-key add - \
    && echo "deb https://packages.cloud.google.com/apt gcsfuse-{{.DebianCodename}} main" \
        > /etc/apt/sources.list.d/gcsfuse.list \
    && apt-get update && apt-get install -y --no-install-recommends gcsfuse \
    && rm -rf /var/lib/apt/lists/*

RUN set -eux; \
    case "$TARGETARCH" in \
        arm64) nixArch=aarch64 ;; \
        *) nixArch=x86_64 ;; \
    esac; \
    mkdir -p {{.NixStagingDir}}; \
    curl -fsSL "https://releases.nixos.org/nix/nix-{{.NixVersion}}/nix-{{.NixVersion}}-${nixArch}-linux.tar.xz" \
        | tar -xJ -C {{.NixStagingDir}} --strip-components=1

# Populated by an external volume at run time.
RUN mkdir -p {{.MountPoint}}

COPY ` + HelperScriptName + ` {{.ScriptPath}}

CMD ["/bin/bash"]
`
