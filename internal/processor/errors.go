package processor

import (
	"fmt"

	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
)

// Stage names the part of a run that failed before any encode started.
type Stage string

const (
	StageAnalysis Stage = "analysis"
	StagePlanning Stage = "planning"
)

// StageError aborts a run before either encode is spawned.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PathCollisionError is returned when the derived outputs would overwrite
// the input or each other.
type PathCollisionError struct {
	Path   string
	Reason string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("output path collision at %s: %s", e.Path, e.Reason)
}

// OutputBusyError is returned when another run is writing the same pair.
type OutputBusyError struct {
	LockPath string
}

func (e *OutputBusyError) Error() string {
	return fmt.Sprintf("outputs are being written by another run (lock %s)", e.LockPath)
}

// EncodeFailedError is a non-zero exit from the encoder for one side.
type EncodeFailedError struct {
	Side       types.Side
	ExitCode   int
	StderrTail string
}

func (e *EncodeFailedError) Error() string {
	msg := fmt.Sprintf("%s encode exited with code %d", e.Side, e.ExitCode)
	if e.StderrTail != "" {
		msg += ":\n" + e.StderrTail
	}
	return msg
}

// OutputMissingError means the encoder reported success but its output
// cannot be found.
type OutputMissingError struct {
	Side types.Side
	Path string
	Err  error
}

func (e *OutputMissingError) Error() string {
	return fmt.Sprintf("%s encode succeeded but %s is missing: %v", e.Side, e.Path, e.Err)
}

func (e *OutputMissingError) Unwrap() error { return e.Err }

// SideError attributes a runner or context failure to a side.
type SideError struct {
	Side types.Side
	Err  error
}

func (e *SideError) Error() string {
	return fmt.Sprintf("%s encode: %v", e.Side, e.Err)
}

func (e *SideError) Unwrap() error { return e.Err }
