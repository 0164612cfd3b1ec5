// Package root assembles the tunaforge command tree.
package root

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/config"
	"github.com/gh-core-team/tunaforge/internal/logger"
	buildCmd "github.com/gh-core-team/tunaforge/pkg/cmd/build"
	dockerfileCmd "github.com/gh-core-team/tunaforge/pkg/cmd/dockerfile"
	imagesCmd "github.com/gh-core-team/tunaforge/pkg/cmd/images"
	initCmd "github.com/gh-core-team/tunaforge/pkg/cmd/init"
	publishCmd "github.com/gh-core-team/tunaforge/pkg/cmd/publish"
	releaseCmd "github.com/gh-core-team/tunaforge/pkg/cmd/release"
)

// NewCmdRoot creates the root tunaforge command.
func NewCmdRoot(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tunaforge",
		Short: "Build and publish the nix-tunasync mirror image",
		Long: `tunaforge builds the nix-tunasync container image and uploads it
to the internal registry.

Image coordinates come from tunaforge.yaml, overridable with the
IMAGE_NAME and IMAGE_VERSION environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(f.Debug)

			if f.WorkDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to determine working directory: %w", err)
				}
				f.WorkDir = wd
			}

			// File logging is best-effort: a broken config surfaces from the
			// command itself, not here.
			if cfg, err := f.Config(); err == nil {
				if err := initFileLogging(f, cfg); err != nil {
					return err
				}
			}

			logger.Debug().
				Str("run_id", uuid.NewString()).
				Str("version", f.Version).
				Str("workdir", f.WorkDir).
				Msg("tunaforge starting")
			return nil
		},
	}

	cmd.SetVersionTemplate(`{{printf "tunaforge version %s\n" .Version}}`)
	cmd.Version = versionString(f.Version, f.Commit)

	// Accept underscore spellings for flags (--no_cache == --no-cache).
	cmd.SetGlobalNormalizationFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.PersistentFlags().BoolVarP(&f.Debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&f.WorkDir, "workdir", "w", "", "Working directory (default: current directory)")
	cmd.PersistentFlags().StringVar(&f.ConfigPath, "config", "", "Path to configuration file")

	cmd.AddCommand(buildCmd.NewCmdBuild(f))
	cmd.AddCommand(publishCmd.NewCmdPublish(f))
	cmd.AddCommand(releaseCmd.NewCmdRelease(f))
	cmd.AddCommand(imagesCmd.NewCmdImages(f))
	cmd.AddCommand(dockerfileCmd.NewCmdDockerfile(f))
	cmd.AddCommand(initCmd.NewCmdInit(f))

	return cmd
}

// initFileLogging switches the global logger to rotating file output when the
// configuration asks for it.
func initFileLogging(f *cmdutil.Factory, cfg *config.Config) error {
	if cfg.Logging.FileEnabled == nil || !*cfg.Logging.FileEnabled {
		return nil
	}
	logsDir := cfg.Logging.Dir
	if logsDir == "" {
		logsDir = filepath.Join(f.WorkDir, ".tunaforge", "logs")
	}
	return logger.InitWithFile(f.Debug, logsDir, &logger.FileConfig{
		Enabled:    cfg.Logging.FileEnabled,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

func versionString(version, commit string) string {
	if commit != "" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}
