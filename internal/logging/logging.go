// Package logging builds the logrus logger shared by the CLI and library.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Options select the logger's verbosity and format.
type Options struct {
	Verbose bool
	// Format is "text" or "json".
	Format  string
	// Out defaults to stderr.
	Out     io.Writer
}

// New creates a logger. Text output is colored only on a terminal.
func New(opts Options) *log.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(log.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	switch opts.Format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{
			ForceColors:      isTerminal(out),
			DisableColors:    !isTerminal(out),
			FullTimestamp:    true,
			DisableTimestamp: !opts.Verbose,
		})
	}
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
