// Package processor splits an ultrawide recording into its left and right
// halves.
package processor

import (
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"
	"github.com/ZacxDev/ultrawide-splitter/internal/probe"
	"github.com/ZacxDev/ultrawide-splitter/internal/runner"
	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	log "github.com/sirupsen/logrus"
)

// DefaultRetryDelay is the pause between attempts of a failed encode.
const DefaultRetryDelay = time.Second

// ProgressFunc receives encode progress for one side. It is called from the
// goroutine running that side's encode.
type ProgressFunc func(side types.Side, p ffmpeg.Progress)

// Options configure a Splitter.
type Options struct {
	// FFmpegPath and FFprobePath default to the bare tool names.
	FFmpegPath  string
	FFprobePath string

	// Sequential runs the left encode to completion before the right one.
	Sequential bool

	// Retries is how many extra attempts a side gets after the encoder
	// exits non-zero. Zero disables retrying. The wait between attempts is
	// a fixed RetryDelay and ends early when the context is cancelled.
	Retries    int
	RetryDelay time.Duration

	// JobTimeout bounds each encode attempt. Zero means no limit.
	JobTimeout time.Duration

	Progress ProgressFunc
}

// Request is a single split run.
type Request struct {
	RunID     string
	InputPath string
	Format    string
	Quality   string
	OutputDir string
}

// Splitter orchestrates probing, planning and the two encodes.
type Splitter struct {
	opts   Options
	runner runner.Runner
	prober *probe.Prober
	logger log.FieldLogger
}

// NewSplitter creates a splitter that runs every external tool through r.
func NewSplitter(r runner.Runner, opts Options, logger log.FieldLogger) *Splitter {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = ffmpeg.DefaultFFmpeg
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = ffmpeg.DefaultFFprobe
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Splitter{
		opts:   opts,
		runner: r,
		prober: probe.NewProber(r, opts.FFprobePath, logger),
		logger: logger,
	}
}
