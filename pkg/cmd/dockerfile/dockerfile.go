// Package dockerfile renders the generated build recipe.
package dockerfile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/recipe"
)

// NewCmdDockerfile creates the dockerfile command.
func NewCmdDockerfile(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dockerfile",
		Short: "Print the generated Dockerfile",
		Long: `Renders the Dockerfile that 'tunaforge build' would use, with the
configured base image, Nix version and paths applied, and prints it to
standard output. Useful for inspecting the recipe or seeding a custom
Dockerfile.`,
		Example: `  # Inspect the recipe
  tunaforge dockerfile

  # Seed a custom Dockerfile
  tunaforge dockerfile > Dockerfile`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.Config()
			if err != nil {
				return err
			}
			gen := recipe.NewGenerator(cfg, f.WorkDir)
			out, err := gen.Generate()
			if err != nil {
				return fmt.Errorf("failed to generate Dockerfile: %w", err)
			}
			_, err = f.IOStreams.Out.Write(out)
			return err
		},
	}
	return cmd
}
