package processor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"
	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/ZacxDev/ultrawide-splitter/internal/report"
	"github.com/ZacxDev/ultrawide-splitter/internal/runner"
	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Split analyzes req.InputPath and encodes its two halves. Failures before
// encoding are returned as *StageError with no result. Once encoding starts a
// result is always returned; per-side failures are recorded in it and
// reported by its Err method.
func (s *Splitter) Split(ctx context.Context, req Request) (*report.SplitResult, error) {
	start := time.Now()
	logger := s.logger.WithFields(log.Fields{
		"run":   req.RunID,
		"input": req.InputPath,
	})

	analysis, err := s.prober.Analyze(ctx, req.InputPath)
	if err != nil {
		return nil, &StageError{Stage: StageAnalysis, Err: err}
	}
	for _, w := range analysis.Warnings() {
		logger.Warn(w)
	}

	params, err := planner.Resolve(req.Quality)
	if err != nil {
		return nil, &StageError{Stage: StagePlanning, Err: err}
	}

	leftPath, rightPath, err := OutputPaths(req.InputPath, req.Format, req.OutputDir)
	if err != nil {
		return nil, &StageError{Stage: StagePlanning, Err: err}
	}

	if _, err := s.runner.LookPath(s.opts.FFmpegPath); err != nil {
		return nil, &StageError{Stage: StagePlanning, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(leftPath), 0o755); err != nil {
		return nil, &StageError{Stage: StagePlanning, Err: errors.Wrap(err, "creating output directory")}
	}

	lock, err := acquireOutputLock(absPath(leftPath), absPath(rightPath))
	if err != nil {
		return nil, &StageError{Stage: StagePlanning, Err: err}
	}
	defer func() {
		if err := lock.release(); err != nil {
			logger.WithError(err).Warn("failed to release output lock")
		}
	}()

	jobs := buildJobs(req.InputPath, leftPath, rightPath, analysis.Width(), analysis.Height(), params)
	logger.WithFields(log.Fields{
		"width":   analysis.Width(),
		"height":  analysis.Height(),
		"quality": params.Preset,
	}).Infof("splitting into %s and %s", leftPath, rightPath)

	outcomes := s.runJobs(ctx, jobs, analysis.Duration(), logger)

	meta := report.Meta{
		RunID:     req.RunID,
		InputPath: req.InputPath,
		Width:     analysis.Width(),
		Height:    analysis.Height(),
		Warnings:  analysis.Warnings(),
		Params:    params,
	}
	return report.Assemble(meta, outcomes[0], outcomes[1], time.Since(start)), nil
}

// runJobs executes every job and returns one outcome per job, in order. A
// failing job never cancels its siblings.
func (s *Splitter) runJobs(ctx context.Context, jobs []EncodeJob, total time.Duration, logger log.FieldLogger) []report.SideOutcome {
	outcomes := make([]report.SideOutcome, len(jobs))

	if s.opts.Sequential {
		for i, job := range jobs {
			outcomes[i] = s.runJob(ctx, job, total, logger)
		}
		return outcomes
	}

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job EncodeJob) {
			defer wg.Done()
			outcomes[i] = s.runJob(ctx, job, total, logger)
		}(i, job)
	}
	wg.Wait()
	return outcomes
}

func (s *Splitter) runJob(ctx context.Context, job EncodeJob, total time.Duration, logger log.FieldLogger) report.SideOutcome {
	logger = logger.WithField("side", job.Side)
	outcome := report.SideOutcome{Side: job.Side}
	start := time.Now()

	logger.WithField("filter", job.Crop.Filter()).Infof("encoding %s", job.OutputPath)

	attempts := uint(s.opts.Retries + 1)
	var lastErr error
	_ = retry.Do(
		func() error {
			if lastErr != nil && ctx.Err() != nil {
				return lastErr
			}
			outcome.Attempts++
			lastErr = s.encodeOnce(ctx, job, total, logger)
			return lastErr
		},
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.RetryIf(func(err error) bool {
			var failed *EncodeFailedError
			return errors.As(err, &failed) && ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			if n+1 < attempts {
				logger.WithError(err).Warnf("attempt %d of %d failed, retrying in %s", n+1, attempts, s.opts.RetryDelay)
				waitRetry(ctx, s.opts.RetryDelay)
			}
		}),
	)
	outcome.Elapsed = time.Since(start)

	if lastErr != nil {
		outcome.Err = lastErr
		logger.WithError(lastErr).Error("encode failed")
		return outcome
	}

	info, err := os.Stat(job.OutputPath)
	if err == nil && info.IsDir() {
		err = errors.New("path is a directory")
	}
	if err != nil {
		outcome.Err = &OutputMissingError{Side: job.Side, Path: job.OutputPath, Err: err}
		logger.WithError(outcome.Err).Error("encode output missing")
		return outcome
	}

	outcome.Output = &report.OutputFile{Path: job.OutputPath, Size: info.Size()}
	logger.WithFields(log.Fields{
		"size":    info.Size(),
		"elapsed": outcome.Elapsed.Round(time.Millisecond),
	}).Info("encode finished")
	return outcome
}

// encodeOnce runs a single encoder attempt. A failed attempt removes the
// output it wrote before returning.
func (s *Splitter) encodeOnce(ctx context.Context, job EncodeJob, total time.Duration, logger log.FieldLogger) (err error) {
	if s.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.JobTimeout)
		defer cancel()
	}

	cmd := runner.Command{Binary: s.opts.FFmpegPath, Args: job.Args()}
	if s.opts.Progress != nil {
		parser := ffmpeg.NewProgressParser(total)
		cmd.OnStderrLine = func(line string) {
			if p, ok := parser.Parse(line); ok {
				s.opts.Progress(job.Side, p)
			}
		}
	}

	before, _ := os.Stat(job.OutputPath)
	defer func() {
		if err != nil {
			removePartial(job.OutputPath, before, logger)
		}
	}()

	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return &SideError{Side: job.Side, Err: err}
	}
	if res.ExitCode != 0 {
		return &EncodeFailedError{
			Side:       job.Side,
			ExitCode:   res.ExitCode,
			StderrTail: runner.Tail(res.Stderr, runner.DefaultTailLines),
		}
	}
	return nil
}

// waitRetry sleeps for d or until ctx is done.
func waitRetry(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// removePartial deletes the output left by a failed attempt. A file that was
// already at path and that the attempt never touched is kept.
func removePartial(path string, before os.FileInfo, logger log.FieldLogger) {
	after, err := os.Stat(path)
	if err != nil || after.IsDir() {
		return
	}
	if before != nil && os.SameFile(before, after) &&
		before.Size() == after.Size() && before.ModTime().Equal(after.ModTime()) {
		logger.Debugf("keeping %s, the failed attempt did not write it", path)
		return
	}
	if err := os.Remove(path); err != nil {
		logger.WithError(err).Warnf("failed to remove partial output %s", path)
		return
	}
	logger.Debugf("removed partial output %s", path)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
