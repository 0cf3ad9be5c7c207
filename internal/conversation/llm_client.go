package conversation

import (
	"context"
	"encoding/json"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// ToolRequest is a structured tool invocation requested by the model. Args is
// the raw JSON argument payload; parsing and validation happen in the engine,
// never inside a client.
type ToolRequest struct {
	Name string
	Args json.RawMessage
}

type GenerateRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// GenerateResult is the structured model output for one turn: a reply, zero
// or more tool requests, and an optional handoff tier.
type GenerateResult struct {
	Reply      string
	ToolCalls  []ToolRequest
	Handoff    string
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
