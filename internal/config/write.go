package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the template written by `tunaforge init`.
const DefaultConfigYAML = `# tunaforge configuration
# Values can be overridden with TUNAFORGE_* environment variables,
# or IMAGE_NAME / IMAGE_VERSION for the image coordinates.

image:
  name: sabre/gh-core-team/nix-tunasync
  version: 0.1.1

build:
  base_image: debian:bullseye
  nix_version: "2.3.16"
  # dockerfile: ./Dockerfile   # bypass the generated recipe
  # context: .                 # build context for a custom dockerfile

registry:
  local_prefix: sabre
`

// WriteDefault writes the default config file into dir.
// Returns an error if the file already exists.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigYAML), 0644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}
	return path, nil
}

// Save marshals cfg to the config file in dir, overwriting any existing file.
// Unlike WriteDefault this drops the template comments.
func Save(cfg *Config, dir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
