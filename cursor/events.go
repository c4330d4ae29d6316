package cursor

// EventType discriminates between session event kinds.
type EventType int

const (
	// EventTypeReady fires when the system init message is received.
	EventTypeReady EventType = iota
	// EventTypeText fires for each assistant text segment.
	EventTypeText
	// EventTypeToolStart fires when a tool invocation begins.
	EventTypeToolStart
	// EventTypeToolComplete fires when a tool invocation completes.
	EventTypeToolComplete
	// EventTypeTurnComplete fires when the session finishes.
	EventTypeTurnComplete
	// EventTypeError fires on session errors.
	EventTypeError
)

// Event is the interface for all session events.
type Event interface {
	Type() EventType
}

// ReadyEvent carries the session metadata from the init message.
type ReadyEvent struct {
	SessionID string
	Model     string
	CWD       string
}

func (e ReadyEvent) Type() EventType { return EventTypeReady }

// TextEvent carries one assistant text segment plus the accumulated
// text so far.
type TextEvent struct {
	Text     string
	FullText string
}

func (e TextEvent) Type() EventType { return EventTypeText }

// ToolStartEvent fires when the agent starts a tool.
type ToolStartEvent struct {
	Input map[string]interface{}
	ID    string
	Name  string
}

func (e ToolStartEvent) Type() EventType { return EventTypeToolStart }

// ToolCompleteEvent fires when a tool finishes.
type ToolCompleteEvent struct {
	Result  interface{}
	ID      string
	IsError bool
}

func (e ToolCompleteEvent) Type() EventType { return EventTypeToolComplete }

// TurnCompleteEvent fires once when the result message arrives.
type TurnCompleteEvent struct {
	Error         error
	SessionID     string
	DurationMs    int64
	DurationAPIMs int64
	Success       bool
}

func (e TurnCompleteEvent) Type() EventType { return EventTypeTurnComplete }

// ErrorEvent carries a session failure. Context names the stage that
// failed (parse, read, process).
type ErrorEvent struct {
	Error   error
	Context string
}

func (e ErrorEvent) Type() EventType { return EventTypeError }
