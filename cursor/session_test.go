package cursor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainEvents(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, evt)
		case <-timeout:
			t.Fatal("timed out waiting for event channel to close")
		}
	}
}

func TestSession_EventPipeline(t *testing.T) {
	cli := writeFakeCLI(t, `cat > /dev/null
echo '{"type":"system","subtype":"init","session_id":"s1","model":"cursor-fast","cwd":"/work"}'
echo '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Hello "}]}}'
echo '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"World"}]}}'
echo '{"type":"tool_call","subtype":"started","call_id":"c1","tool_call":{"readToolCall":{"args":{"path":"/tmp/f"}}}}'
echo '{"type":"tool_call","subtype":"completed","call_id":"c1","tool_call":{"readToolCall":{"args":{"path":"/tmp/f"},"result":{"success":{"content":"data"}}}}}'
echo '{"type":"result","subtype":"success","duration_ms":99,"duration_api_ms":90,"is_error":false,"result":"Hello World","session_id":"s1"}'`)

	session := NewSession("greet me", WithCLIPath(cli))
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	events := drainEvents(t, session.Events())
	require.Len(t, events, 6)

	ready, ok := events[0].(ReadyEvent)
	require.True(t, ok)
	assert.Equal(t, "s1", ready.SessionID)
	assert.Equal(t, "cursor-fast", ready.Model)
	assert.Equal(t, "/work", ready.CWD)

	text1, ok := events[1].(TextEvent)
	require.True(t, ok)
	assert.Equal(t, "Hello ", text1.Text)
	assert.Equal(t, "Hello ", text1.FullText)

	text2, ok := events[2].(TextEvent)
	require.True(t, ok)
	assert.Equal(t, "World", text2.Text)
	assert.Equal(t, "Hello World", text2.FullText)

	start, ok := events[3].(ToolStartEvent)
	require.True(t, ok)
	assert.Equal(t, "c1", start.ID)
	assert.Equal(t, "Read", start.Name)

	complete, ok := events[4].(ToolCompleteEvent)
	require.True(t, ok)
	assert.Equal(t, "c1", complete.ID)
	assert.Equal(t, "data", complete.Result)
	assert.False(t, complete.IsError)

	turn, ok := events[5].(TurnCompleteEvent)
	require.True(t, ok)
	assert.True(t, turn.Success)
	assert.Equal(t, int64(99), turn.DurationMs)

	info := session.Info()
	require.NotNil(t, info)
	assert.Equal(t, "s1", info.SessionID)
}

func TestSession_ParseErrorEmitsErrorEvent(t *testing.T) {
	cli := writeFakeCLI(t, `cat > /dev/null
echo 'NOT JSON'
echo '{"type":"result","subtype":"success","duration_ms":1,"duration_api_ms":1,"is_error":false,"session_id":"s1"}'`)

	session := NewSession("test", WithCLIPath(cli))
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	events := drainEvents(t, session.Events())
	require.NotEmpty(t, events)

	errEvt, ok := events[0].(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "parse", errEvt.Context)

	var decodeErr *CLIJSONDecodeError
	assert.ErrorAs(t, errEvt.Error, &decodeErr)
}

func TestSession_AbnormalExitEmitsErrorEvent(t *testing.T) {
	cli := writeFakeCLI(t, `cat > /dev/null
echo "out of credits" >&2
exit 7`)

	session := NewSession("test", WithCLIPath(cli))
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	events := drainEvents(t, session.Events())
	require.Len(t, events, 1)

	errEvt, ok := events[0].(ErrorEvent)
	require.True(t, ok)

	var procErr *ProcessError
	require.ErrorAs(t, errEvt.Error, &procErr)
	assert.Equal(t, 7, procErr.ExitCode)
	assert.Contains(t, procErr.Stderr, "out of credits")
}

func TestSession_TurnCompleteFailure(t *testing.T) {
	cli := writeFakeCLI(t, `cat > /dev/null
echo '{"type":"result","subtype":"error","duration_ms":5,"duration_api_ms":5,"is_error":true,"result":"quota exceeded","session_id":"s1"}'`)

	session := NewSession("test", WithCLIPath(cli))
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	events := drainEvents(t, session.Events())
	require.Len(t, events, 1)

	turn, ok := events[0].(TurnCompleteEvent)
	require.True(t, ok)
	assert.False(t, turn.Success)
	require.Error(t, turn.Error)
	assert.Contains(t, turn.Error.Error(), "quota exceeded")
}

func TestSession_StartTwice(t *testing.T) {
	cli := writeFakeCLI(t, `cat > /dev/null
exit 0`)

	session := NewSession("test", WithCLIPath(cli))
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	assert.ErrorIs(t, session.Start(context.Background()), ErrAlreadyStarted)
}

func TestSession_StartSpawnFailure(t *testing.T) {
	session := NewSession("test", WithCLIPath("/nonexistent/cursor-agent"))

	err := session.Start(context.Background())

	var notFound *CLINotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSession_StopBeforeStart(t *testing.T) {
	session := NewSession("test")
	assert.NoError(t, session.Stop())
}

func TestSession_StopClosesEvents(t *testing.T) {
	cli := writeFakeCLI(t, `echo '{"type":"system","subtype":"init","session_id":"s1"}'
sleep 60`)

	session := NewSession("test", WithCLIPath(cli))
	require.NoError(t, session.Start(context.Background()))

	// Wait for the ready event so the read loop is alive.
	select {
	case <-session.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("no ready event")
	}

	require.NoError(t, session.Stop())
	require.NoError(t, session.Stop())

	drainEvents(t, session.Events())
}

func TestQueryStream(t *testing.T) {
	cli := writeFakeCLI(t, `cat > /dev/null
echo '{"type":"system","subtype":"init","session_id":"s1"}'
echo '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}'
echo '{"type":"result","subtype":"success","duration_ms":1,"duration_api_ms":1,"is_error":false,"session_id":"s1"}'`)

	events, err := QueryStream(context.Background(), "test", WithCLIPath(cli))
	require.NoError(t, err)

	collected := drainEvents(t, events)
	require.Len(t, collected, 3)
	assert.IsType(t, ReadyEvent{}, collected[0])
	assert.IsType(t, TextEvent{}, collected[1])
	assert.IsType(t, TurnCompleteEvent{}, collected[2])
}

func TestQueryStream_SpawnFailure(t *testing.T) {
	events, err := QueryStream(context.Background(), "test",
		WithCLIPath("/nonexistent/cursor-agent"))

	assert.Nil(t, events)
	var notFound *CLINotFoundError
	require.ErrorAs(t, err, &notFound)
}
