package pipeline

import (
	"errors"
	"fmt"
)

// Parse-time errors abort the pipeline before anything is spawned.
var (
	ErrEmptySegment      = errors.New("empty command segment")
	ErrMalformedRedirect = errors.New("redirect requires a file path")
)

// Spawn errors. ErrExecFailed and ErrRedirectOpenFailed are fatal only to
// their stage and surface to the runner as an exit status; ErrForkFailed and
// ErrPipeCreateFailed abort the remaining spawns.
var (
	ErrForkFailed         = errors.New("fork failed")
	ErrPipeCreateFailed   = errors.New("pipe creation failed")
	ErrExecFailed         = errors.New("exec failed")
	ErrRedirectOpenFailed = errors.New("cannot open redirect target")
)

// ErrPartialSpawn is returned by Run when some stages started and a later one
// could not be spawned.
var ErrPartialSpawn = errors.New("pipeline partially spawned")

// Exit statuses reported for stages that never ran a user program.
const (
	ExitRedirectFailed = 1
	ExitCannotExec     = 126
	ExitNotFound       = 127
)

// SpawnError ties a spawn failure to the stage that caused it.
type SpawnError struct {
	Stage int
	Name  string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Stage, e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
