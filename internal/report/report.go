// Package report assembles and renders the outcome of a split run.
package report

import (
	stderrors "errors"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	"github.com/pkg/errors"
)

// OutputFile is a file produced by a successful encode.
type OutputFile struct {
	Path string
	Size int64
}

// SideOutcome is the resolved result of one half. Exactly one of Output and
// Err is set.
type SideOutcome struct {
	Side     types.Side
	Output   *OutputFile
	Err      error
	Attempts int
	Elapsed  time.Duration
}

// Succeeded reports whether the side produced its output.
func (o SideOutcome) Succeeded() bool {
	return o.Err == nil && o.Output != nil
}

// Meta is the run-level information known before encoding starts.
type Meta struct {
	RunID     string
	InputPath string
	Width     int
	Height    int
	Warnings  []string
	Params    planner.EncodeParameters
}

// SplitResult is the final report of a run. Both sides are always present.
type SplitResult struct {
	RunID     string
	InputPath string
	Width     int
	Height    int
	Warnings  []string
	Params    planner.EncodeParameters
	Left      SideOutcome
	Right     SideOutcome
	Duration  time.Duration
}

// Assemble combines the run metadata and both resolved sides. It applies no
// policy of its own.
func Assemble(meta Meta, left, right SideOutcome, elapsed time.Duration) *SplitResult {
	left.Side = types.SideLeft
	right.Side = types.SideRight
	return &SplitResult{
		RunID:     meta.RunID,
		InputPath: meta.InputPath,
		Width:     meta.Width,
		Height:    meta.Height,
		Warnings:  append([]string(nil), meta.Warnings...),
		Params:    meta.Params,
		Left:      left,
		Right:     right,
		Duration:  elapsed,
	}
}

// Succeeded reports whether both halves were produced.
func (r *SplitResult) Succeeded() bool {
	return r.Left.Succeeded() && r.Right.Succeeded()
}

// Side returns the outcome for s.
func (r *SplitResult) Side(s types.Side) SideOutcome {
	if s == types.SideRight {
		return r.Right
	}
	return r.Left
}

// Outputs lists the produced files, left before right.
func (r *SplitResult) Outputs() []OutputFile {
	var out []OutputFile
	for _, o := range []SideOutcome{r.Left, r.Right} {
		if o.Succeeded() {
			out = append(out, *o.Output)
		}
	}
	return out
}

// Err joins the per-side errors, left first. It is nil when both sides
// succeeded.
func (r *SplitResult) Err() error {
	var errs []error
	for _, o := range []SideOutcome{r.Left, r.Right} {
		switch {
		case o.Err != nil:
			errs = append(errs, o.Err)
		case o.Output == nil:
			errs = append(errs, errors.Errorf("%s: no output recorded", o.Side))
		}
	}
	return stderrors.Join(errs...)
}
