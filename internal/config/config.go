// Package config loads and validates tunaforge configuration.
//
// Configuration comes from three layers, later winning: built-in defaults,
// an optional tunaforge.yaml in the working directory, and environment
// variables (TUNAFORGE_* or the bare IMAGE_NAME / IMAGE_VERSION overrides
// the Makefile passes through).
package config

import (
	"fmt"
	"strings"
)

const (
	// ConfigFileName is the name of the per-directory config file.
	ConfigFileName = "tunaforge.yaml"

	// LabelDomain is the reverse-DNS domain for tunaforge labels.
	LabelDomain = "org.ghcore.tunaforge"

	// DefaultImageName is the local image name the recipe builds.
	DefaultImageName = "sabre/gh-core-team/nix-tunasync"

	// DefaultImageVersion is the version tag applied to the built image.
	DefaultImageVersion = "0.1.1"

	// DefaultLocalPrefix is the registry namespace prefix local image names
	// carry. It is stripped when deriving the remote publish coordinate.
	DefaultLocalPrefix = "sabre"
)

// Config is the root configuration for a tunaforge invocation.
type Config struct {
	Image    ImageConfig    `mapstructure:"image" yaml:"image"`
	Build    BuildConfig    `mapstructure:"build" yaml:"build"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ImageConfig identifies the image being built and published.
type ImageConfig struct {
	// Name is the local image name, e.g. "sabre/gh-core-team/nix-tunasync".
	Name string `mapstructure:"name" yaml:"name"`

	// Version is the semantic version tag, e.g. "0.1.1".
	Version string `mapstructure:"version" yaml:"version"`
}

// BuildConfig controls how the image is built.
type BuildConfig struct {
	// Context is the build context directory. Empty means the working
	// directory (only used with a custom Dockerfile).
	Context string `mapstructure:"context" yaml:"context,omitempty"`

	// Dockerfile is an optional custom Dockerfile path. When set, the
	// generated recipe is bypassed and this file is used as-is.
	Dockerfile string `mapstructure:"dockerfile" yaml:"dockerfile,omitempty"`

	// BaseImage is the base OS layer for the generated recipe.
	BaseImage string `mapstructure:"base_image" yaml:"base_image"`

	// NixVersion is the pinned Nix toolchain version downloaded into the image.
	NixVersion string `mapstructure:"nix_version" yaml:"nix_version"`

	// NixStagingDir is where the Nix tarball is unpacked.
	NixStagingDir string `mapstructure:"nix_staging_dir" yaml:"nix_staging_dir"`

	// MountPoint is the empty directory created for the external storage volume.
	MountPoint string `mapstructure:"mount_point" yaml:"mount_point"`

	// ScriptPath is where the helper script is placed inside the image.
	ScriptPath string `mapstructure:"script_path" yaml:"script_path"`
}

// RegistryConfig controls where the image is published.
type RegistryConfig struct {
	// LocalPrefix is the namespace prefix stripped from Image.Name when
	// deriving the remote coordinate.
	LocalPrefix string `mapstructure:"local_prefix" yaml:"local_prefix"`

	// Repository overrides the derived remote repository entirely when set
	// (organization/repo form, without tag).
	Repository string `mapstructure:"repository" yaml:"repository,omitempty"`
}

// LoggingConfig controls optional file logging.
type LoggingConfig struct {
	FileEnabled *bool  `mapstructure:"file_enabled" yaml:"file_enabled,omitempty"`
	Dir         string `mapstructure:"dir" yaml:"dir,omitempty"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" yaml:"max_size_mb,omitempty"`
	MaxAgeDays  int    `mapstructure:"max_age_days" yaml:"max_age_days,omitempty"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups,omitempty"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Image: ImageConfig{
			Name:    DefaultImageName,
			Version: DefaultImageVersion,
		},
		Build: BuildConfig{
			BaseImage:     "debian:bullseye",
			NixVersion:    "2.3.16",
			NixStagingDir: "/opt/nix",
			MountPoint:    "/mnt/storage",
			ScriptPath:    "/opt/nix-channels.py",
		},
		Registry: RegistryConfig{
			LocalPrefix: DefaultLocalPrefix,
		},
	}
}

// Validate checks the configuration for values that would produce an
// unusable image reference.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Image.Name) == "" {
		problems = append(problems, "image.name must not be empty")
	}
	if strings.ContainsAny(c.Image.Name, " \t") {
		problems = append(problems, "image.name must not contain whitespace")
	}
	if strings.TrimSpace(c.Image.Version) == "" {
		problems = append(problems, "image.version must not be empty")
	}
	if strings.ContainsAny(c.Image.Version, " \t/:") {
		problems = append(problems, "image.version must be a plain tag (no '/', ':' or whitespace)")
	}
	if c.Build.BaseImage == "" && c.Build.Dockerfile == "" {
		problems = append(problems, "build.base_image must be set when no custom dockerfile is used")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
