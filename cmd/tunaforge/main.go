package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gh-core-team/tunaforge/internal/cmdutil"
	"github.com/gh-core-team/tunaforge/internal/logger"
	"github.com/gh-core-team/tunaforge/pkg/cmd/root"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := cmdutil.New(version, commit)
	defer f.CloseClient()
	defer logger.CloseFileWriter()

	rootCmd := root.NewCmdRoot(f)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cmdutil.SilentError) {
			return 1
		}

		var flagErr *cmdutil.FlagError
		if errors.As(err, &flagErr) {
			fmt.Fprintln(f.IOStreams.ErrOut, err)
			return 2
		}

		cmdutil.PrintError(f.IOStreams.ErrOut, err.Error())
		return 1
	}
	return 0
}
