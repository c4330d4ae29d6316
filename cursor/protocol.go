package cursor

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

// Wire shapes for the stream-json protocol. Assistant and user records
// nest an API-style message object; tool_call records carry a one-key
// map from tool identifier to invocation detail.

type assistantRecord struct {
	Message struct {
		Role    string `json:"role"`
		Content []struct {
			Type  string                 `json:"type"`
			Text  string                 `json:"text"`
			ID    string                 `json:"id"`
			Name  string                 `json:"name"`
			Input map[string]interface{} `json:"input"`
		} `json:"content"`
	} `json:"message"`
	Model     string `json:"model"`
	SessionID string `json:"session_id"`
}

type userRecord struct {
	Message struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type toolCallRecord struct {
	ToolCall  map[string]json.RawMessage `json:"tool_call"`
	Subtype   string                     `json:"subtype"`
	CallID    string                     `json:"call_id"`
	SessionID string                     `json:"session_id"`
}

type toolCallDetail struct {
	Args   map[string]interface{} `json:"args"`
	Result interface{}            `json:"result"`
}

type functionCallDetail struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type resultRecord struct {
	Usage         map[string]interface{} `json:"usage"`
	TotalCostUSD  *float64               `json:"total_cost_usd"`
	Subtype       string                 `json:"subtype"`
	SessionID     string                 `json:"session_id"`
	Result        string                 `json:"result"`
	DurationMs    int64                  `json:"duration_ms"`
	DurationAPIMs int64                  `json:"duration_api_ms"`
	NumTurns      int                    `json:"num_turns"`
	IsError       bool                   `json:"is_error"`
}

// ParseMessage classifies one raw NDJSON line into a typed Message.
//
// Unparseable input yields *CLIJSONDecodeError carrying the raw line;
// a parseable record with a missing or unrecognized discriminator, or
// with required fields absent, yields *SchemaError. Assistant records
// whose content reduces to no blocks return (nil, nil) and should be
// skipped. ParseMessage is pure and safe for concurrent use.
func ParseMessage(line []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &SchemaError{Message: "record is not a JSON object"}
		}
		return nil, &CLIJSONDecodeError{Line: string(line), Cause: err}
	}

	typ, err := stringField(fields, "type")
	if err != nil || typ == "" {
		return nil, &SchemaError{Message: "missing type discriminator"}
	}

	switch MessageType(typ) {
	case MessageTypeSystem:
		return parseSystem(line, fields)
	case MessageTypeUser:
		return parseUser(line)
	case MessageTypeAssistant:
		return parseAssistant(line)
	case MessageTypeToolCall:
		return parseToolCall(line)
	case MessageTypeResult:
		return parseResult(line)
	default:
		return nil, &SchemaError{Type: typ, Message: "unknown message type"}
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func parseSystem(line []byte, fields map[string]json.RawMessage) (Message, error) {
	subtype, err := stringField(fields, "subtype")
	if err != nil || subtype == "" {
		return nil, &SchemaError{Type: "system", Message: "system message missing subtype"}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(line, &data); err != nil {
		return nil, &CLIJSONDecodeError{Line: string(line), Cause: err}
	}
	delete(data, "type")
	delete(data, "subtype")

	return &SystemMessage{Subtype: subtype, Data: data}, nil
}

func parseUser(line []byte) (Message, error) {
	var rec userRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, &SchemaError{Type: "user", Message: "malformed user message"}
	}

	// Content arrives either as a plain string or as a block list.
	var text string
	if err := json.Unmarshal(rec.Message.Content, &text); err != nil {
		var blocks []struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(rec.Message.Content, &blocks); err != nil || len(blocks) == 0 {
			return nil, &SchemaError{Type: "user", Message: "user message missing content"}
		}
		text = blocks[0].Text
	}

	return &UserMessage{Content: text}, nil
}

func parseAssistant(line []byte) (Message, error) {
	var rec assistantRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, &SchemaError{Type: "assistant", Message: "malformed assistant message"}
	}

	var blocks []ContentBlock
	for _, item := range rec.Message.Content {
		switch item.Type {
		case "text":
			if item.Text != "" {
				blocks = append(blocks, &TextBlock{Text: item.Text})
			}
		case "tool_use":
			blocks = append(blocks, &ToolUseBlock{ID: item.ID, Name: item.Name, Input: item.Input})
		}
	}

	// Stream-json emits assistant segments between tool calls; empty
	// segments carry no information and are dropped.
	if len(blocks) == 0 {
		return nil, nil
	}

	model := rec.Model
	if model == "" {
		model = "unknown"
	}
	return &AssistantMessage{Content: blocks, Model: model}, nil
}

func parseToolCall(line []byte) (Message, error) {
	var rec toolCallRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, &SchemaError{Type: "tool_call", Message: "malformed tool_call message"}
	}
	if rec.CallID == "" {
		return nil, &SchemaError{Type: "tool_call", Message: "tool_call missing call_id"}
	}
	if len(rec.ToolCall) == 0 {
		return nil, &SchemaError{Type: "tool_call", Message: "tool_call missing invocation detail"}
	}

	name, detail, err := extractToolDetail(rec.ToolCall)
	if err != nil {
		return nil, err
	}

	switch rec.Subtype {
	case "started":
		return &AssistantMessage{
			Model:   "unknown",
			Content: []ContentBlock{&ToolUseBlock{ID: rec.CallID, Name: name, Input: detail.Args}},
		}, nil
	case "completed":
		return &AssistantMessage{
			Model:   "unknown",
			Content: []ContentBlock{&ToolResultBlock{ToolUseID: rec.CallID, Content: flattenToolResult(detail.Result)}},
		}, nil
	default:
		return nil, &SchemaError{Type: "tool_call", Message: "unknown tool_call subtype " + rec.Subtype}
	}
}

// extractToolDetail reads the single-key tool_call map. Two wire forms
// exist: named keys like readToolCall/writeToolCall wrapping {args,
// result}, and the function form wrapping {name, arguments}.
func extractToolDetail(toolCall map[string]json.RawMessage) (string, *toolCallDetail, error) {
	if raw, ok := toolCall["function"]; ok {
		var fn functionCallDetail
		if err := json.Unmarshal(raw, &fn); err != nil {
			return "", nil, &SchemaError{Type: "tool_call", Message: "malformed function call detail"}
		}
		detail := &toolCallDetail{Args: decodeFunctionArgs(fn.Arguments)}
		return fn.Name, detail, nil
	}

	for key, raw := range toolCall {
		var detail toolCallDetail
		if err := json.Unmarshal(raw, &detail); err != nil {
			return "", nil, &SchemaError{Type: "tool_call", Message: "malformed tool call detail for " + key}
		}
		return toolName(key), &detail, nil
	}

	return "", nil, &SchemaError{Type: "tool_call", Message: "empty tool_call field"}
}

// decodeFunctionArgs handles arguments delivered either as a JSON
// object or as a string of encoded JSON.
func decodeFunctionArgs(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &args); err == nil {
			return args
		}
		return map[string]interface{}{"raw": encoded}
	}
	return nil
}

// toolName maps wire keys like readToolCall to the tool's display name
// (Read). Keys without the ToolCall suffix pass through unchanged.
func toolName(key string) string {
	base := strings.TrimSuffix(key, "ToolCall")
	if base == "" || base == key {
		return key
	}
	runes := []rune(base)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// flattenToolResult unwraps the {success: {content: "..."}} envelope
// that read/write tool results use; anything else passes through.
func flattenToolResult(result interface{}) interface{} {
	m, ok := result.(map[string]interface{})
	if !ok {
		return result
	}
	success, ok := m["success"].(map[string]interface{})
	if !ok {
		return result
	}
	if content, ok := success["content"].(string); ok {
		return content
	}
	return success
}

func parseResult(line []byte) (Message, error) {
	rec := resultRecord{NumTurns: 1}
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, &SchemaError{Type: "result", Message: "malformed result message"}
	}
	if rec.Subtype == "" {
		return nil, &SchemaError{Type: "result", Message: "result message missing subtype"}
	}

	return &ResultMessage{
		Subtype:       rec.Subtype,
		DurationMs:    rec.DurationMs,
		DurationAPIMs: rec.DurationAPIMs,
		IsError:       rec.IsError,
		SessionID:     rec.SessionID,
		Result:        rec.Result,
		NumTurns:      rec.NumTurns,
		TotalCostUSD:  rec.TotalCostUSD,
		Usage:         rec.Usage,
	}, nil
}
