package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TUNAFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	setDefaults(v)
	return v
}

// bindEnvKeys binds the override variables the recipe exposes. image.name and
// image.version additionally accept the bare IMAGE_NAME / IMAGE_VERSION names
// so the Makefile surface keeps working without the TUNAFORGE_ prefix.
func bindEnvKeys(v *viper.Viper) {
	bindings := map[string][]string{
		"image.name":            {"TUNAFORGE_IMAGE_NAME", "IMAGE_NAME"},
		"image.version":         {"TUNAFORGE_IMAGE_VERSION", "IMAGE_VERSION"},
		"build.context":         {"TUNAFORGE_BUILD_CONTEXT"},
		"build.dockerfile":      {"TUNAFORGE_BUILD_DOCKERFILE"},
		"build.base_image":      {"TUNAFORGE_BUILD_BASE_IMAGE"},
		"build.nix_version":     {"TUNAFORGE_BUILD_NIX_VERSION"},
		"registry.local_prefix": {"TUNAFORGE_REGISTRY_LOCAL_PREFIX"},
		"registry.repository":   {"TUNAFORGE_REGISTRY_REPOSITORY"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			panic(fmt.Sprintf("config: BindEnv(%q) failed: %v", key, err))
		}
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("image.name", d.Image.Name)
	v.SetDefault("image.version", d.Image.Version)
	v.SetDefault("build.base_image", d.Build.BaseImage)
	v.SetDefault("build.nix_version", d.Build.NixVersion)
	v.SetDefault("build.nix_staging_dir", d.Build.NixStagingDir)
	v.SetDefault("build.mount_point", d.Build.MountPoint)
	v.SetDefault("build.script_path", d.Build.ScriptPath)
	v.SetDefault("registry.local_prefix", d.Registry.LocalPrefix)
}

// Load reads configuration for the given working directory. An explicit path
// (from --config) takes precedence over the conventional tunaforge.yaml in
// workDir. A missing conventional file is not an error; a missing explicit
// file is.
func Load(workDir, explicitPath string) (*Config, error) {
	v := newViper()

	switch {
	case explicitPath != "":
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", explicitPath, err)
		}
	default:
		v.SetConfigFile(filepath.Join(workDir, ConfigFileName))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
			}
			// No config file: defaults + env only.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
