package runner

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Command describes a single external process invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string

	// OnStderrLine receives each stderr line as the process produces it.
	// Lines are split on '\n' and '\r' so ffmpeg's in-place stats updates
	// arrive one by one.
	OnStderrLine func(line string)
}

// String renders the command line for logging.
func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}

// Result holds the captured outcome of a finished process. A non-zero
// ExitCode is not an error at this layer.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner executes external tools.
type Runner interface {
	LookPath(binary string) (string, error)
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec. It holds no per-call state and is
// safe for concurrent use.
type ExecRunner struct {
	logger log.FieldLogger
}

// NewExecRunner creates a runner that logs invocations to logger.
func NewExecRunner(logger log.FieldLogger) *ExecRunner {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &ExecRunner{logger: logger}
}

// LookPath resolves binary on PATH, or checks it directly when it contains a
// path separator.
func (r *ExecRunner) LookPath(binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", &ToolNotFoundError{Tool: binary, Err: errors.New("empty executable name")}
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", &ToolNotFoundError{Tool: binary, Err: err}
	}
	return path, nil
}

// Run spawns cmd, waits for it and returns its exit code and output. When ctx
// is cancelled the child's process group is killed and the context error is
// returned alongside whatever output was captured.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	path, err := r.LookPath(cmd.Binary)
	if err != nil {
		return Result{}, err
	}

	logger := r.logger.WithField("tool", cmd.Binary)
	logger.Debugf("> %s", cmd.String())

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	setProcessGroup(c)
	c.Cancel = func() error {
		return killProcessGroup(c)
	}
	c.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout

	var lines *lineStreamer
	if cmd.OnStderrLine != nil {
		lines = newLineStreamer(cmd.OnStderrLine)
		c.Stderr = io.MultiWriter(&stderr, lines)
	} else {
		c.Stderr = &stderr
	}

	start := time.Now()
	if err := c.Start(); err != nil {
		if lines != nil {
			lines.Close()
		}
		if ctx.Err() != nil {
			return Result{}, errors.Wrapf(ctx.Err(), "%s not started", cmd.Binary)
		}
		return Result{}, &SpawnError{Tool: cmd.Binary, Err: err}
	}

	waitErr := c.Wait()
	if lines != nil {
		lines.Close()
	}

	res := Result{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}

	logger.WithFields(log.Fields{
		"exit_code": res.ExitCode,
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Debug("process finished")

	if ctx.Err() != nil {
		return res, errors.Wrapf(ctx.Err(), "%s interrupted", cmd.Binary)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, nil
		}
		return res, &SpawnError{Tool: cmd.Binary, Err: waitErr}
	}

	return res, nil
}

// lineStreamer turns stderr writes into line callbacks on a separate
// goroutine so a slow consumer never stalls the child process.
type lineStreamer struct {
	pw   *io.PipeWriter
	done chan struct{}
}

func newLineStreamer(fn func(string)) *lineStreamer {
	pr, pw := io.Pipe()
	ls := &lineStreamer{pw: pw, done: make(chan struct{})}

	go func() {
		defer close(ls.done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 4096), bufio.MaxScanTokenSize)
		scanner.Split(scanLinesOrCR)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				fn(line)
			}
		}
		// Keep draining so writers never block on an abandoned pipe.
		_, _ = io.Copy(io.Discard, pr)
	}()

	return ls
}

func (ls *lineStreamer) Write(p []byte) (int, error) {
	return ls.pw.Write(p)
}

func (ls *lineStreamer) Close() {
	_ = ls.pw.Close()
	<-ls.done
}

func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
