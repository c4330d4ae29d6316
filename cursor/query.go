package cursor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/gitcnd/cursor-agent-sdk-go/internal/ndjson"
)

// Query sends a one-shot prompt to cursor-agent and returns a lazy,
// single-pass sequence of messages in arrival order.
//
// The CLI process is spawned when iteration begins and is guaranteed to
// be terminated when iteration stops, whether by normal completion, an
// error, or the consumer breaking out early. A non-nil error is always
// the final element of the sequence; after it the iteration ends.
//
//	for msg, err := range cursor.Query(ctx, "What is 2+2?") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if m, ok := msg.(*cursor.AssistantMessage); ok {
//	        fmt.Print(m.Text())
//	    }
//	}
func Query(ctx context.Context, prompt string, opts ...Option) iter.Seq2[Message, error] {
	options := buildOptions(opts)

	return func(yield func(Message, error) bool) {
		pm := newProcessManager(prompt, options)
		if err := pm.Start(ctx); err != nil {
			yield(nil, err)
			return
		}
		defer pm.Stop()

		for {
			line, err := pm.ReadLine()
			if err != nil {
				if finalErr := translateReadError(ctx, pm, err); finalErr != nil {
					yield(nil, finalErr)
				}
				return
			}

			msg, err := ParseMessage(line)
			if err != nil {
				yield(nil, err)
				return
			}
			if msg == nil {
				continue
			}

			if !yield(msg, nil) {
				return
			}
		}
	}
}

// translateReadError maps a stdout read failure into the public error
// taxonomy. Cancellation wins over everything else: a killed process
// closes its pipes, so the read error it produces is just noise. io.EOF
// is otherwise the normal end of stream: the process exit code decides
// between clean termination (nil) and ProcessError.
func translateReadError(ctx context.Context, pm *processManager, err error) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()

	case errors.Is(err, io.EOF):
		if waitErr := pm.Wait(); waitErr != nil {
			code := pm.ExitCode()
			return &ProcessError{
				Message:  fmt.Sprintf("%s exited with code %d", cliName, code),
				ExitCode: code,
				Stderr:   pm.StderrTail(),
				Cause:    waitErr,
			}
		}
		return nil

	case errors.Is(err, ndjson.ErrTooLong):
		return &CLIJSONDecodeError{
			Line:  "",
			Cause: fmt.Errorf("record exceeded maximum buffer size: %w", err),
		}

	default:
		return &CLIConnectionError{Message: "reading CLI output", Cause: err}
	}
}

// QueryResult is the collected outcome of a one-shot query.
type QueryResult struct {
	SessionID  string
	Text       string
	DurationMs int64
	NumTurns   int
	Success    bool
}

// Run sends a one-shot prompt and blocks until the session completes,
// collecting the assistant's text. It is a convenience wrapper over
// Query for callers that do not need streaming.
func Run(ctx context.Context, prompt string, opts ...Option) (*QueryResult, error) {
	result := &QueryResult{}
	sawResult := false

	for msg, err := range Query(ctx, prompt, opts...) {
		if err != nil {
			return nil, err
		}

		switch m := msg.(type) {
		case *SystemMessage:
			if m.Subtype == "init" {
				result.SessionID = m.SessionID()
			}
		case *AssistantMessage:
			result.Text += m.Text()
		case *ResultMessage:
			sawResult = true
			result.Success = !m.IsError
			result.DurationMs = m.DurationMs
			result.NumTurns = m.NumTurns
			if m.SessionID != "" {
				result.SessionID = m.SessionID
			}
			if m.IsError {
				return nil, fmt.Errorf("agent reported failure: %s", m.Result)
			}
			if result.Text == "" && m.Result != "" {
				result.Text = m.Result
			}
		}
	}

	if !sawResult && result.Text == "" {
		return nil, ErrSessionClosed
	}
	return result, nil
}
