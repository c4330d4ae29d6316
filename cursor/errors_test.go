package cursor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDKError_MatchesWholeTaxonomy(t *testing.T) {
	taxonomy := []error{
		&CLINotFoundError{Path: "/nope"},
		&CLIConnectionError{Message: "spawn failed"},
		&ProcessError{Message: "exited", ExitCode: 1},
		&CLIJSONDecodeError{Line: "garbage"},
		&SchemaError{Type: "telemetry", Message: "unknown message type"},
	}

	for _, err := range taxonomy {
		var sdkErr SDKError
		assert.ErrorAs(t, err, &sdkErr, "%T should implement SDKError", err)
	}
}

func TestSDKError_MatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("query failed: %w", &ProcessError{Message: "exited", ExitCode: 2, Stderr: "boom"})

	var sdkErr SDKError
	require.ErrorAs(t, wrapped, &sdkErr)

	var procErr *ProcessError
	require.ErrorAs(t, wrapped, &procErr)
	assert.Equal(t, 2, procErr.ExitCode)
	assert.Equal(t, "boom", procErr.Stderr)
}

func TestCLINotFoundError_Message(t *testing.T) {
	err := &CLINotFoundError{Path: "/usr/bin/missing"}
	assert.Contains(t, err.Error(), "/usr/bin/missing")
	assert.Contains(t, err.Error(), "cursor.com/install")
}

func TestProcessError_Message(t *testing.T) {
	err := &ProcessError{Message: "cursor-agent exited with code 3", ExitCode: 3}
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestCLIJSONDecodeError_TruncatesLongLines(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	err := &CLIJSONDecodeError{Line: string(long), Cause: errors.New("bad")}
	assert.Less(t, len(err.Error()), 200)
	assert.Contains(t, err.Error(), "...")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	assert.ErrorIs(t, &CLINotFoundError{Cause: cause}, cause)
	assert.ErrorIs(t, &CLIConnectionError{Cause: cause}, cause)
	assert.ErrorIs(t, &ProcessError{Cause: cause}, cause)
	assert.ErrorIs(t, &CLIJSONDecodeError{Cause: cause}, cause)
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(nil))
	assert.True(t, IsRecoverable(errors.New("transient")))

	assert.False(t, IsRecoverable(&ProcessError{ExitCode: 1}))
	assert.False(t, IsRecoverable(&CLINotFoundError{}))
	assert.False(t, IsRecoverable(&CLIConnectionError{}))
	assert.False(t, IsRecoverable(&CLIJSONDecodeError{}))
	assert.False(t, IsRecoverable(&SchemaError{}))
	assert.False(t, IsRecoverable(ErrSessionClosed))
	assert.False(t, IsRecoverable(fmt.Errorf("wrapped: %w", &ProcessError{ExitCode: 1})))
}
