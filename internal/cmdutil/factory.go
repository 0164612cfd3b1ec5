// Package cmdutil provides shared plumbing for tunaforge commands.
package cmdutil

import (
	"context"
	"sync"

	"github.com/gh-core-team/tunaforge/internal/config"
	"github.com/gh-core-team/tunaforge/internal/docker"
	"github.com/gh-core-team/tunaforge/internal/iostreams"
)

// Factory provides shared dependencies for CLI commands.
// It is a dependency injection container: the struct defines what
// dependencies exist, while New wires the real implementations.
// Commands extract only the fields they need.
type Factory struct {
	// Configuration from flags (set before command execution)
	WorkDir    string
	ConfigPath string
	Debug      bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	// IO streams for input/output (for testability)
	IOStreams *iostreams.IOStreams

	// Dependency providers (closures, overridable in tests)
	Config      func() (*config.Config, error)
	Client      func(context.Context) (*docker.Client, error)
	CloseClient func()
}

// New creates a Factory wired with the real implementations.
// Config and Client are lazy and cached per process.
func New(version, commit string) *Factory {
	f := &Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: iostreams.New(),
	}

	var (
		cfgOnce sync.Once
		cfg     *config.Config
		cfgErr  error
	)
	f.Config = func() (*config.Config, error) {
		cfgOnce.Do(func() {
			cfg, cfgErr = config.Load(f.WorkDir, f.ConfigPath)
		})
		return cfg, cfgErr
	}

	var (
		clientMu sync.Mutex
		client   *docker.Client
	)
	f.Client = func(ctx context.Context) (*docker.Client, error) {
		clientMu.Lock()
		defer clientMu.Unlock()
		if client != nil {
			return client, nil
		}
		c, err := docker.NewClient(ctx, f.Version)
		if err != nil {
			return nil, err
		}
		client = c
		return client, nil
	}
	f.CloseClient = func() {
		clientMu.Lock()
		defer clientMu.Unlock()
		if client != nil {
			_ = client.Close()
			client = nil
		}
	}

	return f
}
