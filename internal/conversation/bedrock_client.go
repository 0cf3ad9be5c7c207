package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient generates turns through the Bedrock Converse API. It is used
// as the fallback provider when OpenAI is unavailable.
type BedrockClient struct {
	api bedrockConverseAPI
}

// NewBedrockClient wraps a bedrock runtime client.
func NewBedrockClient(api bedrockConverseAPI) *BedrockClient {
	if api == nil {
		panic("conversation: bedrock converse client cannot be nil")
	}
	return &BedrockClient{api: api}
}

func bedrockToolConfig() *brtypes.ToolConfiguration {
	leadSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"lead_type": map[string]any{"type": "string", "enum": []string{"enterprise", "smb", "individual"}},
			"lead_name": map[string]any{"type": "string"},
			"company":   map[string]any{"type": "string"},
			"email":     map[string]any{"type": "string"},
			"phone":     map[string]any{"type": "string"},
			"details":   map[string]any{"type": "string"},
			"priority":  map[string]any{"type": "string", "enum": []string{"normal", "high", "urgent"}},
		},
		"required": []string{"lead_type", "lead_name"},
	}
	sendSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to_email": map[string]any{"type": "string"},
			"subject":  map[string]any{"type": "string"},
			"body":     map[string]any{"type": "string"},
			"cc":       map[string]any{"type": "string"},
		},
		"required": []string{"to_email", "subject", "body"},
	}
	handoffSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"lead_type": map[string]any{"type": "string", "enum": []string{"enterprise", "smb", "individual"}},
		},
		"required": []string{"lead_type"},
	}

	spec := func(name, desc string, schema map[string]any) brtypes.Tool {
		return &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(name),
				Description: aws.String(desc),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(schema),
				},
			},
		}
	}

	return &brtypes.ToolConfiguration{
		Tools: []brtypes.Tool{
			spec(ToolRouteLead, "Notify the appropriate sales team about a qualified lead.", leadSchema),
			spec(ToolStoreLead, "Save the lead's captured details to the lead database.", leadSchema),
			spec(ToolSendEmail, "Send an ad-hoc email to an explicit recipient.", sendSchema),
			spec(toolHandoff, "Hand the conversation to the specialist track for the classified tier.", handoffSchema),
		},
	}
}

// Generate runs one Converse turn and translates text and tool-use blocks
// into the engine's structured result.
func (c *BedrockClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if strings.TrimSpace(req.Model) == "" {
		return GenerateResult{}, errors.New("conversation: bedrock model id is required")
	}

	systemBlocks := make([]brtypes.SystemContentBlock, 0, len(req.System))
	for _, block := range req.System {
		if strings.TrimSpace(block) == "" {
			continue
		}
		systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: block})
	}

	messages := make([]brtypes.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}

		switch msg.Role {
		case ChatRoleSystem:
			systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: content})
			continue
		case ChatRoleUser:
			messages = append(messages, brtypes.Message{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: content},
				},
			})
		case ChatRoleAssistant:
			messages = append(messages, brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: content},
				},
			})
		default:
			return GenerateResult{}, fmt.Errorf("conversation: unsupported role %q", msg.Role)
		}
	}

	inference := &brtypes.InferenceConfiguration{}
	if req.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(req.MaxTokens)
	}
	if req.Temperature >= 0 {
		inference.Temperature = aws.Float32(req.Temperature)
	}
	if req.TopP != 0 {
		inference.TopP = aws.Float32(req.TopP)
	}
	if inference.MaxTokens == nil && inference.Temperature == nil && inference.TopP == nil {
		inference = nil
	}

	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(req.Model),
		System:          systemBlocks,
		Messages:        messages,
		InferenceConfig: inference,
		ToolConfig:      bedrockToolConfig(),
	})
	if err != nil {
		return GenerateResult{}, err
	}
	if out == nil {
		return GenerateResult{}, errors.New("conversation: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return GenerateResult{}, errors.New("conversation: bedrock response did not include a message output")
	}

	var result GenerateResult
	var text strings.Builder
	for _, block := range msgOut.Value.Content {
		switch v := block.(type) {
		case *brtypes.ContentBlockMemberText:
			text.WriteString(v.Value)
		case *brtypes.ContentBlockMemberToolUse:
			name := aws.ToString(v.Value.Name)
			var raw json.RawMessage
			if v.Value.Input != nil {
				data, err := v.Value.Input.MarshalSmithyDocument()
				if err != nil {
					return GenerateResult{}, fmt.Errorf("conversation: bedrock tool input decode: %w", err)
				}
				raw = json.RawMessage(data)
			}
			if name == toolHandoff {
				var args struct {
					LeadType string `json:"lead_type"`
				}
				_ = json.Unmarshal(raw, &args)
				result.Handoff = args.LeadType
				continue
			}
			result.ToolCalls = append(result.ToolCalls, ToolRequest{Name: name, Args: raw})
		}
	}

	result.Reply = strings.TrimSpace(text.String())
	if out.StopReason != "" {
		result.StopReason = string(out.StopReason)
	}
	if out.Usage != nil {
		result.Usage = TokenUsage{
			InputTokens:  int32OrZero(out.Usage.InputTokens),
			OutputTokens: int32OrZero(out.Usage.OutputTokens),
			TotalTokens:  int32OrZero(out.Usage.TotalTokens),
		}
	}
	return result, nil
}

func int32OrZero(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}

var _ LLMClient = (*BedrockClient)(nil)
