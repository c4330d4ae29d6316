package cursor

import (
	"errors"
	"fmt"
)

// Sentinel errors for session state guards.
var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNotStarted     = errors.New("session not started")
	ErrSessionClosed  = errors.New("session is closed")
)

// SDKError is implemented by every error type this package surfaces.
// Callers can match the whole taxonomy with
//
//	var sdkErr cursor.SDKError
//	if errors.As(err, &sdkErr) { ... }
//
// or match a specific kind with its concrete type.
type SDKError interface {
	error
	sdkError()
}

// CLINotFoundError indicates the cursor-agent binary could not be
// located, either at the configured path or on the search path. It is
// raised before any process is spawned.
type CLINotFoundError struct {
	Cause error
	Path  string
}

func (e *CLINotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cursor-agent not found at %q: install with: curl https://cursor.com/install -fsS | bash", e.Path)
	}
	return "cursor-agent not found: install with: curl https://cursor.com/install -fsS | bash"
}

func (e *CLINotFoundError) Unwrap() error { return e.Cause }
func (e *CLINotFoundError) sdkError()     {}

// CLIConnectionError indicates the CLI process could not be started or
// its pipes could not be established.
type CLIConnectionError struct {
	Cause   error
	Message string
}

func (e *CLIConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("connection error: %s", e.Message)
}

func (e *CLIConnectionError) Unwrap() error { return e.Cause }
func (e *CLIConnectionError) sdkError()     {}

// ProcessError indicates the CLI process exited abnormally. Stderr
// carries the tail of the captured diagnostic output.
type ProcessError struct {
	Cause    error
	Message  string
	Stderr   string
	ExitCode int
}

func (e *ProcessError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("process error: %s (exit code %d)", e.Message, e.ExitCode)
	}
	return fmt.Sprintf("process error: %s", e.Message)
}

func (e *ProcessError) Unwrap() error { return e.Cause }
func (e *ProcessError) sdkError()     {}

// CLIJSONDecodeError indicates a stdout record could not be parsed as
// JSON. Line carries the offending raw text for diagnosis.
type CLIJSONDecodeError struct {
	Cause error
	Line  string
}

func (e *CLIJSONDecodeError) Error() string {
	line := e.Line
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return fmt.Sprintf("failed to decode CLI output %q: %v", line, e.Cause)
}

func (e *CLIJSONDecodeError) Unwrap() error { return e.Cause }
func (e *CLIJSONDecodeError) sdkError()     {}

// SchemaError indicates a record parsed as JSON but does not match any
// known message shape: an unrecognized discriminator or a missing
// required field.
type SchemaError struct {
	Type    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error: %s (type %q)", e.Message, e.Type)
	}
	return fmt.Sprintf("schema error: %s", e.Message)
}

func (e *SchemaError) sdkError() {}

// IsRecoverable reports whether the caller could reasonably retry the
// query after err. Resolution, process and protocol failures are not
// retried: the agent's side effects are not idempotent.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	var sdkErr SDKError
	if errors.As(err, &sdkErr) {
		return false
	}

	if errors.Is(err, ErrSessionClosed) {
		return false
	}

	return true
}
