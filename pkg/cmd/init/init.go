// Package initcmd scaffolds a tunaforge configuration file.
package initcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/config"
)

// Options contains the options for the init command.
type Options struct {
	Force        bool
	ImageName    string
	ImageVersion string
}

// NewCmdInit creates the init command.
func NewCmdInit(f *cmdutil.Factory) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default tunaforge.yaml",
		Long: `Writes a commented tunaforge.yaml with the default image coordinates
and build settings into the working directory. With --image-name or
--image-version the file is written with those coordinates instead.`,
		Example: `  # Scaffold the default configuration
  tunaforge init

  # Scaffold with custom coordinates
  tunaforge init --image-name sabre/other/mirror --image-version 0.2.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().StringVar(&opts.ImageName, "image-name", "", "Image name to write into the configuration")
	cmd.Flags().StringVar(&opts.ImageVersion, "image-version", "", "Image version to write into the configuration")

	return cmd
}

func run(f *cmdutil.Factory, opts *Options) error {
	// Validate before touching any existing file.
	var cfg *config.Config
	if opts.ImageName != "" || opts.ImageVersion != "" {
		cfg = config.Default()
		if opts.ImageName != "" {
			cfg.Image.Name = opts.ImageName
		}
		if opts.ImageVersion != "" {
			cfg.Image.Version = opts.ImageVersion
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	path := filepath.Join(f.WorkDir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if !opts.Force {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if cfg != nil {
		if err := config.Save(cfg, f.WorkDir); err != nil {
			return err
		}
	} else if _, err := config.WriteDefault(f.WorkDir); err != nil {
		return err
	}

	fmt.Fprintf(f.IOStreams.ErrOut, "Wrote %s\n", path)
	return nil
}
