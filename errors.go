package blocks

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Standard errors returned by graph construction and the runtimes.
var (
	// ErrNoBlocks is returned by NewGraph when given an empty block slice.
	ErrNoBlocks = errors.New("blocks: graph has no blocks")

	// ErrAlreadyRunning is returned when Run or RunAsync is called on an
	// App that is already executing.
	ErrAlreadyRunning = errors.New("blocks: app is already running")

	// ErrStopped names the condition of a runtime that has completed
	// shutdown. No function in this package returns it.
	ErrStopped = errors.New("blocks: runtime has stopped")
)

// WiringError is raised at graph construction when a block's declared
// input or output event set is malformed (e.g. an explicit Sum or Emits
// option was given zero members).
type WiringError struct {
	Block   string
	Message string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("blocks: wiring error in block %q: %s", e.Block, e.Message)
}

// RuntimeMismatchError is raised when a graph is run on a runtime that
// cannot support one of its blocks: a cooperative block given to the sync
// runtime, or a parallel-offload processor given to the async runtime.
type RuntimeMismatchError struct {
	Block   string
	Runtime string
	Reason  string
}

func (e *RuntimeMismatchError) Error() string {
	return fmt.Sprintf("blocks: %s runtime cannot run block %q: %s", e.Runtime, e.Block, e.Reason)
}

// SourceError wraps an error raised by a source block during a tick. The
// runtime treats it as fatal: the run stops and proceeds to shutdown.
type SourceError struct {
	Block string
	Cause error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("blocks: source %q failed: %v", e.Block, e.Cause)
}

func (e *SourceError) Unwrap() error { return e.Cause }

// ProcessorError wraps an error raised by a processor block while handling
// a specific input event. The runtime treats it as fatal: the run stops
// and proceeds to shutdown. InputType and Input are preserved for logging.
type ProcessorError struct {
	Block         string
	InputType     reflect.Type
	Input         Event
	Cause         error
	CorrelationID string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("blocks: processor %q failed on input %s [%s]: %v", e.Block, e.InputType, e.CorrelationID, e.Cause)
}

func (e *ProcessorError) Unwrap() error { return e.Cause }

// PoolError wraps an error raised by a parallel-offload worker. Policy is
// identical to ProcessorError: the runtime stops and the pool is
// terminated during shutdown.
type PoolError struct {
	Block         string
	InputType     reflect.Type
	Input         Event
	Cause         error
	CorrelationID string
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("blocks: parallel worker for %q failed on input %s [%s]: %v", e.Block, e.InputType, e.CorrelationID, e.Cause)
}

func (e *PoolError) Unwrap() error { return e.Cause }

// WrapError wraps cause with a message, preserving it for errors.Is and
// errors.As.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}

// newCorrelationID generates a correlation id for a fatal error, so a
// single failure can be traced across log lines even when the same block
// name appears in several error reports.
func newCorrelationID() string {
	return uuid.NewString()
}
