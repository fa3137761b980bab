package runner

import "fmt"

// ToolNotFoundError reports that an executable could not be located.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%q not found: %v", e.Tool, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// SpawnError reports an OS-level failure to launch or wait on a process.
type SpawnError struct {
	Tool string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run %q: %v", e.Tool, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
