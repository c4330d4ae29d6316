// Package cursor provides a Go SDK for driving the Cursor Agent CLI.
//
// The SDK spawns cursor-agent as a subprocess, decodes its stream-json
// output incrementally, and exposes the conversation as a typed message
// stream. One query owns exactly one process; teardown is guaranteed on
// every exit path, including the consumer abandoning iteration.
//
// # Quick Start
//
// For a blocking one-shot query:
//
//	result, err := cursor.Run(ctx, "What is 2+2?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Text)
//
// # Message Streaming
//
// Query returns the raw message sequence lazily:
//
//	for msg, err := range cursor.Query(ctx, "Summarize this repo",
//	    cursor.WithModel("cursor-fast"),
//	    cursor.WithCwd("/path/to/project"),
//	) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch m := msg.(type) {
//	    case *cursor.SystemMessage:
//	        fmt.Printf("session %s\n", m.SessionID())
//	    case *cursor.AssistantMessage:
//	        fmt.Print(m.Text())
//	    case *cursor.ResultMessage:
//	        fmt.Printf("\ndone in %dms\n", m.DurationMs)
//	    }
//	}
//
// # Event Streaming
//
// QueryStream trades raw messages for coarser events (ready, text
// deltas, tool activity, turn completion):
//
//	events, err := cursor.QueryStream(ctx, "Write a haiku about Go")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for event := range events {
//	    switch e := event.(type) {
//	    case cursor.TextEvent:
//	        fmt.Print(e.Text)
//	    case cursor.TurnCompleteEvent:
//	        fmt.Printf("\n[success=%v]\n", e.Success)
//	    }
//	}
//
// # Errors
//
// All failures surface as typed errors implementing SDKError:
// CLINotFoundError before any process exists, CLIConnectionError for
// spawn failures, CLIJSONDecodeError and SchemaError for protocol
// breakage, and ProcessError for abnormal exits (carrying the exit code
// and captured stderr). Messages already yielded remain valid when a
// stream ends in error.
package cursor
