// Package videoprocessor is the library entry point for splitting 32:9
// recordings into two 16:9 videos.
package videoprocessor

import (
	"context"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"
	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/ZacxDev/ultrawide-splitter/internal/probe"
	"github.com/ZacxDev/ultrawide-splitter/internal/processor"
	"github.com/ZacxDev/ultrawide-splitter/internal/report"
	"github.com/ZacxDev/ultrawide-splitter/internal/runner"
	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type (
	SplitResult = report.SplitResult
	SideOutcome = report.SideOutcome
	OutputFile  = report.OutputFile
	Progress    = ffmpeg.Progress
	ToolStatus  = ffmpeg.ToolStatus
)

// SplitOptions defines options for splitting a video.
type SplitOptions struct {
	InputPath string
	// OutputDir defaults to the input's directory.
	OutputDir string
	// Format overrides the output extension.
	Format    string
	// Quality is a preset name; empty selects the lossless preset.
	Quality   string

	FFmpegPath  string
	FFprobePath string

	Sequential bool
	Retries    int
	Timeout    time.Duration

	// RunID tags log entries; one is generated when empty.
	RunID    string
	Logger   log.FieldLogger
	Progress func(side types.Side, p Progress)

	runner runner.Runner
}

// VideoMetadata describes the stream a split would be based on.
type VideoMetadata struct {
	Width    int
	Height   int
	Codec    string
	Duration time.Duration
	Warnings []string
}

// GetSupportedPresets returns the quality preset names, best quality first.
func GetSupportedPresets() []string {
	return planner.PresetNames()
}

// SplitVideo splits opts.InputPath into left and right halves. A nil result
// means the run stopped before encoding. Otherwise the result describes
// both sides and the error, if any, joins the per-side failures.
func SplitVideo(ctx context.Context, opts SplitOptions) (*SplitResult, error) {
	logger := loggerFor(opts.Logger)
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Quality == "" {
		opts.Quality = string(planner.DefaultPreset)
	}

	s := processor.NewSplitter(runnerFor(opts.runner, logger), processor.Options{
		FFmpegPath:  ffmpeg.ResolveBinary(orDefault(opts.FFmpegPath, ffmpeg.DefaultFFmpeg)),
		FFprobePath: ffmpeg.ResolveBinary(orDefault(opts.FFprobePath, ffmpeg.DefaultFFprobe)),
		Sequential:  opts.Sequential,
		Retries:     opts.Retries,
		JobTimeout:  opts.Timeout,
		Progress:    opts.Progress,
	}, logger)

	result, err := s.Split(ctx, processor.Request{
		RunID:     opts.RunID,
		InputPath: opts.InputPath,
		Format:    opts.Format,
		Quality:   opts.Quality,
		OutputDir: opts.OutputDir,
	})
	if err != nil {
		return nil, err
	}
	return result, result.Err()
}

// GetVideoMetadata probes inputPath without encoding anything.
func GetVideoMetadata(ctx context.Context, inputPath, ffprobePath string) (*VideoMetadata, error) {
	return getVideoMetadata(ctx, nil, inputPath, ffprobePath)
}

func getVideoMetadata(ctx context.Context, r runner.Runner, inputPath, ffprobePath string) (*VideoMetadata, error) {
	logger := loggerFor(nil)
	p := probe.NewProber(runnerFor(r, logger), ffmpeg.ResolveBinary(orDefault(ffprobePath, ffmpeg.DefaultFFprobe)), logger)

	analysis, err := p.Analyze(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	return &VideoMetadata{
		Width:    analysis.Width(),
		Height:   analysis.Height(),
		Codec:    analysis.Chosen().CodecName,
		Duration: analysis.Duration(),
		Warnings: analysis.Warnings(),
	}, nil
}

// CheckTools reports whether ffmpeg and ffprobe can be run.
func CheckTools(ctx context.Context, ffmpegPath, ffprobePath string) []ToolStatus {
	return checkTools(ctx, nil, ffmpegPath, ffprobePath)
}

func checkTools(ctx context.Context, r runner.Runner, ffmpegPath, ffprobePath string) []ToolStatus {
	r = runnerFor(r, loggerFor(nil))
	return []ToolStatus{
		ffmpeg.Check(ctx, r, ffmpeg.DefaultFFmpeg, ffmpeg.ResolveBinary(orDefault(ffmpegPath, ffmpeg.DefaultFFmpeg))),
		ffmpeg.Check(ctx, r, ffmpeg.DefaultFFprobe, ffmpeg.ResolveBinary(orDefault(ffprobePath, ffmpeg.DefaultFFprobe))),
	}
}

func loggerFor(l log.FieldLogger) log.FieldLogger {
	if l == nil {
		return log.StandardLogger()
	}
	return l
}

func runnerFor(r runner.Runner, logger log.FieldLogger) runner.Runner {
	if r == nil {
		return runner.NewExecRunner(logger)
	}
	return r
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
