package cursor

// MessageType discriminates between message kinds on the wire.
type MessageType string

const (
	MessageTypeSystem    MessageType = "system"
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeToolCall  MessageType = "tool_call"
	MessageTypeResult    MessageType = "result"
)

// Message is the closed union of values yielded by Query. The concrete
// types are *SystemMessage, *UserMessage, *AssistantMessage and
// *ResultMessage.
type Message interface {
	MsgType() MessageType
}

// SystemMessage carries session metadata. Exactly one with subtype
// "init" opens every session; it reports the session id, model and
// working directory.
type SystemMessage struct {
	Data    map[string]interface{}
	Subtype string
}

// MsgType returns the message type.
func (m *SystemMessage) MsgType() MessageType { return MessageTypeSystem }

// SessionID returns the session id announced at init, if present.
func (m *SystemMessage) SessionID() string { return m.stringField("session_id") }

// Model returns the model name announced at init, if present.
func (m *SystemMessage) Model() string { return m.stringField("model") }

// CWD returns the working directory announced at init, if present.
func (m *SystemMessage) CWD() string { return m.stringField("cwd") }

func (m *SystemMessage) stringField(key string) string {
	if s, ok := m.Data[key].(string); ok {
		return s
	}
	return ""
}

// UserMessage echoes the submitted prompt back through the stream.
type UserMessage struct {
	Content string
}

// MsgType returns the message type.
func (m *UserMessage) MsgType() MessageType { return MessageTypeUser }

// AssistantMessage is a response segment from the agent. Content is
// never empty: records that reduce to no blocks are dropped by the
// classifier.
type AssistantMessage struct {
	Model   string
	Content []ContentBlock
}

// MsgType returns the message type.
func (m *AssistantMessage) MsgType() MessageType { return MessageTypeAssistant }

// Text concatenates the message's text blocks.
func (m *AssistantMessage) Text() string {
	var out string
	for _, block := range m.Content {
		if tb, ok := block.(*TextBlock); ok {
			out += tb.Text
		}
	}
	return out
}

// ResultMessage terminates a successful stream. At most one is emitted
// and it is always last.
type ResultMessage struct {
	Usage         map[string]interface{}
	TotalCostUSD  *float64
	Subtype       string
	SessionID     string
	Result        string
	DurationMs    int64
	DurationAPIMs int64
	NumTurns      int
	IsError       bool
}

// MsgType returns the message type.
func (m *ResultMessage) MsgType() MessageType { return MessageTypeResult }

// ContentBlockType discriminates between content block kinds.
type ContentBlockType string

const (
	ContentBlockTypeText       ContentBlockType = "text"
	ContentBlockTypeToolUse    ContentBlockType = "tool_use"
	ContentBlockTypeToolResult ContentBlockType = "tool_result"
)

// ContentBlock is the closed union of blocks inside an
// AssistantMessage: *TextBlock, *ToolUseBlock or *ToolResultBlock.
type ContentBlock interface {
	BlockType() ContentBlockType
}

// TextBlock is a plain text segment.
type TextBlock struct {
	Text string
}

// BlockType returns the content block type.
func (b *TextBlock) BlockType() ContentBlockType { return ContentBlockTypeText }

// ToolUseBlock records the agent starting a tool invocation.
type ToolUseBlock struct {
	Input map[string]interface{}
	ID    string
	Name  string
}

// BlockType returns the content block type.
func (b *ToolUseBlock) BlockType() ContentBlockType { return ContentBlockTypeToolUse }

// ToolResultBlock records the outcome of a tool invocation. Content is
// a string for simple results or the decoded structure otherwise.
type ToolResultBlock struct {
	Content   interface{}
	IsError   *bool
	ToolUseID string
}

// BlockType returns the content block type.
func (b *ToolResultBlock) BlockType() ContentBlockType { return ContentBlockTypeToolResult }
