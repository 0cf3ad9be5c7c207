package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// toolHandoff is the function the model calls to signal a specialist handoff.
// The client lifts it out of the ordinary tool-call list and into the
// GenerateResult's Handoff field.
const toolHandoff = "handoff_to_specialist"

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient generates turns with OpenAI chat completions and function
// calling.
type OpenAIClient struct {
	client chatClient
	logger *logging.Logger
}

// NewOpenAIClient wraps a go-openai client.
func NewOpenAIClient(client chatClient, logger *logging.Logger) *OpenAIClient {
	if client == nil {
		panic("conversation: chat client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OpenAIClient{client: client, logger: logger}
}

var leadToolParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"lead_type": {"type": "string", "enum": ["enterprise", "smb", "individual"]},
		"lead_name": {"type": "string"},
		"company": {"type": "string"},
		"email": {"type": "string"},
		"phone": {"type": "string"},
		"details": {"type": "string"},
		"priority": {"type": "string", "enum": ["normal", "high", "urgent"]}
	},
	"required": ["lead_type", "lead_name"]
}`)

var sendEmailParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"to_email": {"type": "string"},
		"subject": {"type": "string"},
		"body": {"type": "string"},
		"cc": {"type": "string"}
	},
	"required": ["to_email", "subject", "body"]
}`)

var handoffParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"lead_type": {"type": "string", "enum": ["enterprise", "smb", "individual"]}
	},
	"required": ["lead_type"]
}`)

func chatTools() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolRouteLead,
				Description: "Notify the appropriate sales team about a qualified lead.",
				Parameters:  leadToolParameters,
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolStoreLead,
				Description: "Save the lead's captured details to the lead database.",
				Parameters:  leadToolParameters,
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolSendEmail,
				Description: "Send an ad-hoc email to an explicit recipient.",
				Parameters:  sendEmailParameters,
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolHandoff,
				Description: "Hand the conversation to the specialist track for the classified tier. Call once, when the lead type is clear.",
				Parameters:  handoffParameters,
			},
		},
	}
}

// Generate runs one model turn and translates the completion into the
// engine's structured result.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, sys := range req.System {
		if strings.TrimSpace(sys) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Tools:    chatTools(),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		chatReq.TopP = req.TopP
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("conversation: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return GenerateResult{}, fmt.Errorf("conversation: openai returned no choices")
	}

	choice := resp.Choices[0]
	result := GenerateResult{
		Reply:      strings.TrimSpace(choice.Message.Content),
		StopReason: string(choice.FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}

	for _, call := range choice.Message.ToolCalls {
		if call.Type != openai.ToolTypeFunction {
			continue
		}
		if call.Function.Name == toolHandoff {
			var args struct {
				LeadType string `json:"lead_type"`
			}
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				c.logger.Error("malformed handoff arguments", "error", err)
				continue
			}
			result.Handoff = args.LeadType
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ToolRequest{
			Name: call.Function.Name,
			Args: json.RawMessage(call.Function.Arguments),
		})
	}

	return result, nil
}

var _ LLMClient = (*OpenAIClient)(nil)
