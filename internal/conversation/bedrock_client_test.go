package conversation

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverseAPI struct {
	lastInput *bedrockruntime.ConverseInput
	output    *bedrockruntime.ConverseOutput
	err       error
}

func (s *stubConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.lastInput = params
	return s.output, s.err
}

func converseMessage(blocks ...brtypes.ContentBlock) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: blocks,
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
	}
}

func TestBedrockGenerateTextReply(t *testing.T) {
	api := &stubConverseAPI{
		output: converseMessage(&brtypes.ContentBlockMemberText{Value: "Thanks, Sarah! What does Acme need?"}),
	}
	client := NewBedrockClient(api)

	result, err := client.Generate(context.Background(), GenerateRequest{
		Model:  "anthropic.claude-3-haiku",
		System: []string{"You qualify inbound leads."},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "Hi, I'm Sarah from Acme"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Thanks, Sarah! What does Acme need?", result.Reply)
	assert.Empty(t, result.ToolCalls)
	assert.Equal(t, string(brtypes.StopReasonEndTurn), result.StopReason)

	require.NotNil(t, api.lastInput)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.lastInput.ModelId))
	require.NotNil(t, api.lastInput.ToolConfig)
	assert.Len(t, api.lastInput.ToolConfig.Tools, 4)
}

func TestBedrockGenerateDecodesToolUse(t *testing.T) {
	input := document.NewLazyDocument(map[string]any{
		"lead_type": "smb",
		"lead_name": "Dana",
		"email":     "dana@birch.io",
	})
	api := &stubConverseAPI{
		output: converseMessage(
			&brtypes.ContentBlockMemberText{Value: "Storing your details now."},
			&brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
				Name:      aws.String(ToolStoreLead),
				ToolUseId: aws.String("tool-1"),
				Input:     input,
			}},
		),
	}
	client := NewBedrockClient(api)

	result, err := client.Generate(context.Background(), GenerateRequest{
		Model:    "anthropic.claude-3-haiku",
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "I'm Dana, dana@birch.io"}},
	})
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, ToolStoreLead, result.ToolCalls[0].Name)
	assert.JSONEq(t, `{"lead_type":"smb","lead_name":"Dana","email":"dana@birch.io"}`, string(result.ToolCalls[0].Args))
}

func TestBedrockGenerateHandoff(t *testing.T) {
	input := document.NewLazyDocument(map[string]any{"lead_type": "enterprise"})
	api := &stubConverseAPI{
		output: converseMessage(
			&brtypes.ContentBlockMemberText{Value: "Connecting you with our enterprise team."},
			&brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
				Name:      aws.String(toolHandoff),
				ToolUseId: aws.String("tool-2"),
				Input:     input,
			}},
		),
	}
	client := NewBedrockClient(api)

	result, err := client.Generate(context.Background(), GenerateRequest{
		Model:    "anthropic.claude-3-haiku",
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "We have 2000 employees"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "enterprise", result.Handoff)
	assert.Empty(t, result.ToolCalls)
}

func TestBedrockGenerateRequiresModel(t *testing.T) {
	client := NewBedrockClient(&stubConverseAPI{})
	_, err := client.Generate(context.Background(), GenerateRequest{})
	assert.Error(t, err)
}
