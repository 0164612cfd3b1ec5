// Package publish implements the upload-image operation.
package publish

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/docker"
	"github.com/gh-core-team/tunaforge/internal/logger"
)

// Options contains the options for the publish command.
type Options struct {
	// Repository overrides the derived remote repository.
	Repository string
}

// NewCmdPublish creates the publish command.
func NewCmdPublish(f *cmdutil.Factory) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the built image to the registry",
		Long: `Tags the locally built image with its registry coordinate and pushes it.

The remote repository is derived from image.name by stripping the local
prefix (registry.local_prefix, default "sabre/"), so
sabre/gh-core-team/nix-tunasync:0.1.1 is pushed as
gh-core-team/nix-tunasync:0.1.1. Set registry.repository to override
the derivation entirely.`,
		Example: `  # Push the configured image
  tunaforge publish

  # Push to an explicit repository
  tunaforge publish --repository registry.example.com/mirrors/nix-tunasync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), f, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Repository, "repository", "", "Remote repository to push to (overrides derivation)")

	return cmd
}

// Run executes the publish operation. Exported so release can compose it.
func Run(ctx context.Context, f *cmdutil.Factory, opts *Options) error {
	ios := f.IOStreams

	cfg, err := f.Config()
	if err != nil {
		return err
	}

	repository := opts.Repository
	if repository == "" {
		repository = cfg.Registry.Repository
	}

	localTag := docker.LocalTag(cfg.Image.Name, cfg.Image.Version)
	remote := docker.RemoteCoordinate(cfg.Image.Name, cfg.Image.Version, cfg.Registry.LocalPrefix, repository)
	if err := docker.ValidateReference(remote); err != nil {
		return err
	}

	client, err := f.Client(ctx)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	exists, err := client.ImageExists(ctx, localTag)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}
	if !exists {
		return cmdutil.HandleError(ios.ErrOut, docker.ErrImageMissing(localTag))
	}

	logger.Debug().
		Str("local", localTag).
		Str("remote", remote).
		Msg("publishing image")

	if err := client.TagImage(ctx, localTag, remote); err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	dgst, err := client.PushImage(ctx, remote, ios.ErrOut)
	if err != nil {
		return cmdutil.HandleError(ios.ErrOut, err)
	}

	if dgst != "" {
		fmt.Fprintf(ios.Out, "Published %s (digest: %s)\n", remote, dgst)
	} else {
		fmt.Fprintf(ios.Out, "Published %s\n", remote)
	}
	return nil
}
