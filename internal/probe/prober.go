package probe

import (
	"context"
	"fmt"

	"github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"
	"github.com/ZacxDev/ultrawide-splitter/internal/runner"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ProbeFailedError is returned when the probe tool ran but exited non-zero,
// typically because the input is missing or not a media file.
type ProbeFailedError struct {
	Path       string
	ExitCode   int
	StderrTail string
}

func (e *ProbeFailedError) Error() string {
	msg := fmt.Sprintf("probing %s failed with exit code %d", e.Path, e.ExitCode)
	if e.StderrTail != "" {
		msg += ": " + e.StderrTail
	}
	return msg
}

// Prober inspects media files with ffprobe.
type Prober struct {
	runner runner.Runner
	binary string
	logger log.FieldLogger
}

// NewProber creates a prober that invokes binary through r. An empty binary
// means ffprobe on PATH.
func NewProber(r runner.Runner, binary string, logger log.FieldLogger) *Prober {
	if binary == "" {
		binary = ffmpeg.DefaultFFprobe
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Prober{runner: r, binary: binary, logger: logger}
}

// Analyze probes path and selects the stream that drives the split.
func (p *Prober) Analyze(ctx context.Context, path string) (*MediaAnalysis, error) {
	res, err := p.runner.Run(ctx, runner.Command{
		Binary: p.binary,
		Args:   ffmpeg.ProbeArgs(path),
	})
	if err != nil {
		var notFound *runner.ToolNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "probing %s", path)
	}
	if res.ExitCode != 0 {
		return nil, &ProbeFailedError{
			Path:       path,
			ExitCode:   res.ExitCode,
			StderrTail: runner.Tail(res.Stderr, runner.DefaultTailLines),
		}
	}

	streams, duration, err := ParseStreams(res.Stdout)
	if err != nil {
		return nil, err
	}

	analysis, err := NewAnalysis(streams, duration)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(log.Fields{
		"input":    path,
		"width":    analysis.Width(),
		"height":   analysis.Height(),
		"codec":    analysis.Chosen().CodecName,
		"duration": analysis.Duration(),
	}).Debug("input analyzed")
	return analysis, nil
}
