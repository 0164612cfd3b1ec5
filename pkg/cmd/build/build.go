// Package build implements the build-image operation.
package build

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/docker"
	"github.com/gh-core-team/tunaforge/internal/logger"
	"github.com/gh-core-team/tunaforge/internal/recipe"
)

// Options contains the options for the build command.
type Options struct {
	NoCache   bool
	Pull      bool
	Quiet     bool
	Platform  string
	ExtraTags []string
	BuildArgs []string
}

// NewCmdBuild creates the build command.
func NewCmdBuild(f *cmdutil.Factory) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the mirror image",
		Long: `Builds the nix-tunasync container image and tags it locally as
image.name:image.version from the configuration.

By default the Dockerfile is generated from the built-in recipe. Set
build.dockerfile in tunaforge.yaml to build from a custom Dockerfile
instead.`,
		Example: `  # Build with the configured name and version
  tunaforge build

  # Build a specific version without cache
  IMAGE_VERSION=0.1.2 tunaforge build --no-cache

  # Cross-build for arm64
  tunaforge build --platform linux/arm64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), f, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Build without using Docker cache")
	cmd.Flags().BoolVar(&opts.Pull, "pull", false, "Always pull the base image")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress build output")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Target platform (e.g. linux/arm64)")
	cmd.Flags().StringArrayVarP(&opts.ExtraTags, "tag", "t", nil, "Additional tags for the built image")
	cmd.Flags().StringArrayVar(&opts.BuildArgs, "build-arg", nil, "Build-time variables (KEY=VALUE)")

	return cmd
}

// Run executes the build operation. Exported so release can compose it.
func Run(ctx context.Context, f *cmdutil.Factory, opts *Options) error {
	ios := f.IOStreams

	cfg, err := f.Config()
	if err != nil {
		return err
	}

	buildArgs, err := parseBuildArgs(opts.BuildArgs)
	if err != nil {
		return err
	}

	client, err := f.Client(ctx)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	localTag := docker.LocalTag(cfg.Image.Name, cfg.Image.Version)
	if err := docker.ValidateReference(localTag); err != nil {
		return err
	}

	gen := recipe.NewGenerator(cfg, f.WorkDir)

	logger.Debug().
		Str("image", localTag).
		Bool("no-cache", opts.NoCache).
		Str("platform", opts.Platform).
		Msg("starting build")

	buildOpts := docker.BuildImageOpts{
		Tags:           mergeTags(localTag, opts.ExtraTags),
		Dockerfile:     "Dockerfile",
		BuildArgs:      buildArgs,
		NoCache:        opts.NoCache,
		Pull:           opts.Pull,
		Platform:       opts.Platform,
		SuppressOutput: opts.Quiet,
		Output:         ios.ErrOut,
		Labels:         docker.ImageLabels(cfg.Image.Name, cfg.Image.Version, f.Version),
	}

	buildCtx, err := buildContext(gen)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}
	if gen.UseCustomDockerfile() {
		buildOpts.Dockerfile = filepath.Base(gen.CustomDockerfilePath())
	}

	// The engine stream is the progress display; the spinner only covers
	// quiet builds, where the stream is suppressed.
	if opts.Quiet {
		ios.StartProgress("Building " + localTag)
	}
	err = client.BuildImage(ctx, buildCtx, buildOpts)
	ios.StopProgress()
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	fmt.Fprintf(ios.ErrOut, "Successfully built image: %s\n", localTag)
	return nil
}

// buildContext assembles the tar stream the engine builds from: either the
// generated recipe plus the embedded helper script, or the configured custom
// Dockerfile's context directory.
func buildContext(gen *recipe.Generator) (io.Reader, error) {
	if gen.UseCustomDockerfile() {
		if !gen.CustomDockerfileExists() {
			return nil, docker.ErrDockerfileMissing(gen.CustomDockerfilePath())
		}
		logger.Debug().
			Str("dockerfile", gen.CustomDockerfilePath()).
			Msg("building from custom Dockerfile")
		return recipe.ContextFromDir(gen.ContextDir())
	}

	dockerfile, err := gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate Dockerfile: %w", err)
	}
	return gen.BuildContext(dockerfile)
}

// parseBuildArgs converts KEY=VALUE strings into the engine's build-arg map.
func parseBuildArgs(args []string) (map[string]*string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	parsed := make(map[string]*string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, cmdutil.FlagErrorf("invalid --build-arg %q: expected KEY=VALUE", arg)
		}
		v := value
		parsed[key] = &v
	}
	return parsed, nil
}

// mergeTags combines the primary tag with additional tags, avoiding duplicates.
func mergeTags(primary string, additional []string) []string {
	seen := map[string]bool{primary: true}
	result := []string{primary}
	for _, tag := range additional {
		if !seen[tag] {
			result = append(result, tag)
			seen[tag] = true
		}
	}
	return result
}
