package conversation

import (
	"context"
	"time"
)

// Service describes how the conversation engine should behave.
type Service interface {
	StartConversation(ctx context.Context, req StartRequest) (*Response, error)
	ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error)
	GetHistory(ctx context.Context, sessionID string) ([]Message, error)
	Reset(ctx context.Context, sessionID string) error
}

// Message represents a single message in a conversation transcript.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// StartRequest represents the minimal data we need to open a conversation.
type StartRequest struct {
	SessionID string            `json:"session_id,omitempty"`
	Intro     string            `json:"intro"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MessageRequest represents a single turn in the conversation.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Response is the DTO returned to the API layer after a turn.
type Response struct {
	SessionID      string    `json:"session_id"`
	Message        string    `json:"message"`
	Stage          Stage     `json:"stage"`
	Classification string    `json:"classification,omitempty"`
	Routed         bool      `json:"routed"`
	Timestamp      time.Time `json:"timestamp"`
}
