// Package iostreams provides testable access to standard streams.
package iostreams

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// IOStreams provides access to standard input/output/error streams.
// It follows the GitHub CLI pattern for testable I/O.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// isOutputTTY caches whether stdout is a terminal.
	// -1 = unchecked, 0 = false, 1 = true
	isOutputTTY int

	// isStderrTTY caches whether stderr is a terminal.
	isStderrTTY int

	progressEnabled bool
	progress        *spinner.Spinner
	progressMu      sync.Mutex
}

// New creates an IOStreams connected to the process streams.
func New() *IOStreams {
	ios := &IOStreams{
		In:          os.Stdin,
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		isOutputTTY: -1,
		isStderrTTY: -1,
	}
	ios.progressEnabled = ios.IsOutputTTY() && ios.IsStderrTTY()
	return ios
}

// Test creates an IOStreams backed by buffers for tests.
func Test() (*IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
		// Buffers are never TTYs.
		isOutputTTY: 0,
		isStderrTTY: 0,
	}, in, out, errOut
}

// IsOutputTTY reports whether stdout is a terminal.
func (s *IOStreams) IsOutputTTY() bool {
	if s.isOutputTTY == -1 {
		s.isOutputTTY = boolToCache(isTerminal(s.Out))
	}
	return s.isOutputTTY == 1
}

// IsStderrTTY reports whether stderr is a terminal.
func (s *IOStreams) IsStderrTTY() bool {
	if s.isStderrTTY == -1 {
		s.isStderrTTY = boolToCache(isTerminal(s.ErrOut))
	}
	return s.isStderrTTY == 1
}

// StartProgress starts a spinner with the given label when the streams are
// attached to a terminal. A no-op otherwise.
func (s *IOStreams) StartProgress(label string) {
	if !s.progressEnabled {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()

	if s.progress != nil {
		s.progress.Suffix = " " + label
		return
	}
	sp := spinner.New(spinner.CharSets[11], 120*time.Millisecond, spinner.WithWriter(s.ErrOut))
	sp.Suffix = " " + label
	sp.Start()
	s.progress = sp
}

// StopProgress stops the spinner if one is running.
func (s *IOStreams) StopProgress() {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	if s.progress != nil {
		s.progress.Stop()
		s.progress = nil
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func boolToCache(b bool) int {
	if b {
		return 1
	}
	return 0
}
