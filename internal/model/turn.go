package model

import "encoding/json"

// TurnKind tags the union of conversation turn types.
type TurnKind string

const (
	TurnUser       TurnKind = "user"
	TurnAssistant  TurnKind = "assistant"
	TurnToolResult TurnKind = "tool_result"
)

// ToolCall is a structured request from the oracle to invoke a named tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one entry in a conversation. Exactly one kind applies: user input,
// an assistant turn (optionally carrying tool-call requests), or the result
// of a single tool call.
type Turn struct {
	Kind    TurnKind `json:"kind"`
	Content string   `json:"content"`

	// Assistant turns only.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Tool result turns only.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
}

// UserTurn creates a user input turn.
func UserTurn(content string) Turn {
	return Turn{Kind: TurnUser, Content: content}
}

// AssistantTurn creates an assistant turn, optionally with tool calls.
func AssistantTurn(content string, calls []ToolCall) Turn {
	return Turn{Kind: TurnAssistant, Content: content, ToolCalls: calls}
}

// ToolResultTurn creates a tool result turn for a single tool call.
func ToolResultTurn(callID, toolName, content string) Turn {
	return Turn{Kind: TurnToolResult, Content: content, ToolCallID: callID, ToolName: toolName}
}

// RequestsTools reports whether this turn asks for tool invocations.
func (t Turn) RequestsTools() bool {
	return t.Kind == TurnAssistant && len(t.ToolCalls) > 0
}
