//go:build integration

package cursor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a real cursor-agent binary on the search path and a
// logged-in account. Run with: go test -tags integration ./cursor/

func TestIntegration_Run(t *testing.T) {
	if _, err := findCLI(""); err != nil {
		t.Skip("cursor-agent not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := Run(ctx, "Reply with exactly the word: pong")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "pong")
	assert.NotEmpty(t, result.SessionID)
}

func TestIntegration_QueryStream(t *testing.T) {
	if _, err := findCLI(""); err != nil {
		t.Skip("cursor-agent not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	events, err := QueryStream(ctx, "Reply with exactly the word: pong")
	require.NoError(t, err)

	var sawReady, sawTurn bool
	for event := range events {
		switch e := event.(type) {
		case ReadyEvent:
			sawReady = true
			assert.NotEmpty(t, e.SessionID)
		case TurnCompleteEvent:
			sawTurn = true
			assert.True(t, e.Success)
		case ErrorEvent:
			t.Fatalf("unexpected error event: %v", e.Error)
		}
	}
	assert.True(t, sawReady)
	assert.True(t, sawTurn)
}
