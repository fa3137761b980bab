package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/config"
	"github.com/ZacxDev/ultrawide-splitter/internal/logging"
	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/ZacxDev/ultrawide-splitter/internal/processor"
	"github.com/ZacxDev/ultrawide-splitter/internal/report"
	"github.com/ZacxDev/ultrawide-splitter/internal/signal"
	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	"github.com/ZacxDev/ultrawide-splitter/pkg/videoprocessor"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	exitOK = iota
	exitUsage
	exitAborted
	exitEncodeFailed
)

const forceShutdownDelay = 10 * time.Second

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "ultrawide-splitter <input-path>",
		Short: "Split a 32:9 ultrawide recording into two 16:9 videos",
		Long: `ultrawide-splitter crops an ultrawide (typically 3840x1080) screen recording
down the middle and encodes each half as its own 16:9 video.

Outputs are written next to the input as <name>-left.<ext> and <name>-right.<ext>
unless --output is given. Audio is copied into both halves unchanged.

Examples:
  # Split losslessly next to the input
  ultrawide-splitter recording.mkv

  # Smaller files in another directory
  ultrawide-splitter recording.mkv --quality medium --format mp4 -o ./split`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, v, args[0])
		},
	}

	if err := config.BindFlags(rootCmd.PersistentFlags(), v); err != nil {
		log.WithError(err).Fatal("flag binding failed")
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "presets",
			Short: "List the quality presets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return renderPresets(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Verify that ffmpeg and ffprobe are installed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				opts, err := config.Load(v)
				if err != nil {
					return err
				}
				return runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				opts, err := config.Load(v)
				if err != nil {
					return err
				}
				data, err := opts.TOML()
				if err != nil {
					return err
				}
				if opts.ConfigFile != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", opts.ConfigFile)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
	)

	return rootCmd
}

func runSplit(cmd *cobra.Command, v *viper.Viper, input string) error {
	opts, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{Verbose: opts.Verbose, Format: opts.LogFormat, Out: cmd.ErrOrStderr()})
	ctx, stop := signal.WatchInterrupt(cmd.Context(), forceShutdownDelay, logger)
	defer stop()

	splitOpts := videoprocessor.SplitOptions{
		InputPath:   input,
		OutputDir:   opts.OutputDir,
		Format:      opts.Format,
		Quality:     opts.Quality,
		FFmpegPath:  opts.FFmpeg,
		FFprobePath: opts.FFprobe,
		Sequential:  opts.Sequential,
		Retries:     opts.Retries,
		Timeout:     opts.Timeout,
		RunID:       uuid.NewString(),
		Logger:      logger,
	}
	if stderr, ok := cmd.ErrOrStderr().(*os.File); ok && report.ColorEnabled(stderr) && !opts.Verbose {
		p := newProgressLine(stderr)
		splitOpts.Progress = p.update
		defer p.finish()
	}

	result, err := videoprocessor.SplitVideo(ctx, splitOpts)
	if result != nil {
		if renderErr := report.Render(cmd.OutOrStdout(), result, report.ColorEnabled(os.Stdout)); renderErr != nil {
			logger.WithError(renderErr).Warn("failed to render summary")
		}
	}
	return err
}

func renderPresets(w io.Writer) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Preset", "Encoder", "CRF", "Speed", ""})
	for _, name := range planner.PresetNames() {
		p, err := planner.Resolve(name)
		if err != nil {
			return err
		}
		note := ""
		if p.Preset == planner.DefaultPreset {
			note = "default"
		}
		tw.AppendRow(table.Row{p.Preset, p.Encoder, p.CRF, p.Speed, note})
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func runCheck(ctx context.Context, w io.Writer, opts config.Options) error {
	var missing []string
	for _, s := range videoprocessor.CheckTools(ctx, opts.FFmpeg, opts.FFprobe) {
		if !s.Available {
			missing = append(missing, s.Name)
			fmt.Fprintf(w, "%-8s missing (%s)\n", s.Name, s.Detail)
			continue
		}
		fmt.Fprintf(w, "%-8s %s\n         %s\n", s.Name, s.Path, s.Version)
	}
	if len(missing) > 0 {
		return errors.Errorf("%s not available; install FFmpeg or pass --ffmpeg/--ffprobe", strings.Join(missing, " and "))
	}
	return nil
}

// progressLine keeps a single status line of per-side encode progress.
type progressLine struct {
	mu      sync.Mutex
	w       io.Writer
	percent map[types.Side]float64
	last    time.Time
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w, percent: map[types.Side]float64{}}
}

func (p *progressLine) update(side types.Side, pr videoprocessor.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percent[side] = pr.Percent
	if time.Since(p.last) < 250*time.Millisecond {
		return
	}
	p.last = time.Now()

	parts := make([]string, 0, 2)
	for _, s := range types.Sides() {
		parts = append(parts, fmt.Sprintf("%s %5.1f%%", s, p.percent[s]))
	}
	fmt.Fprintf(p.w, "\r%s", strings.Join(parts, "  "))
}

func (p *progressLine) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.last.IsZero() {
		fmt.Fprint(p.w, "\n")
	}
}

func exitCodeFor(err error) int {
	var (
		stage   *processor.StageError
		failed  *processor.EncodeFailedError
		missing *processor.OutputMissingError
		side    *processor.SideError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &stage):
		return exitAborted
	case errors.As(err, &failed), errors.As(err, &missing), errors.As(err, &side):
		return exitEncodeFailed
	default:
		return exitUsage
	}
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}
