// Package release composes build and publish into a single operation.
package release

import (
	"github.com/spf13/cobra"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/pkg/cmd/build"
	"github.com/gh-core-team/tunaforge/pkg/cmd/publish"
)

// Options contains the options for the release command.
type Options struct {
	Build   build.Options
	Publish publish.Options
}

// NewCmdRelease creates the release command.
func NewCmdRelease(f *cmdutil.Factory) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Build and publish the mirror image",
		Long: `Builds the nix-tunasync image and, only if the build succeeds,
uploads it to the registry. A failed build aborts the release before
anything is pushed.`,
		Example: `  # Build and publish in one step
  tunaforge release

  # Release a specific version
  IMAGE_VERSION=0.1.2 tunaforge release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := build.Run(ctx, f, &opts.Build); err != nil {
				return err
			}
			return publish.Run(ctx, f, &opts.Publish)
		},
	}

	cmd.Flags().BoolVar(&opts.Build.NoCache, "no-cache", false, "Build without using Docker cache")
	cmd.Flags().BoolVar(&opts.Build.Pull, "pull", false, "Always pull the base image")
	cmd.Flags().StringVar(&opts.Build.Platform, "platform", "", "Target platform (e.g. linux/arm64)")
	cmd.Flags().StringVar(&opts.Publish.Repository, "repository", "", "Remote repository to push to (overrides derivation)")

	return cmd
}
