package conversation

import (
	"context"

	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// FallbackLLMClient wraps a primary LLM client with a fallback provider.
// If the primary fails, it automatically retries with the fallback.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	// fallbackModel overrides req.Model when the fallback provider is used,
	// since the providers name models differently.
	fallbackModel string
	logger        *logging.Logger
}

// NewFallbackLLMClient creates a new fallback-enabled LLM client.
// If fallback is nil, the client will only use the primary provider.
func NewFallbackLLMClient(primary, fallback LLMClient, fallbackModel string, logger *logging.Logger) *FallbackLLMClient {
	if primary == nil {
		panic("conversation: primary LLM client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{
		primary:       primary,
		fallback:      fallback,
		fallbackModel: fallbackModel,
		logger:        logger,
	}
}

// Generate sends the request to the primary LLM.
// If it fails and a fallback is configured, retries with the fallback.
func (c *FallbackLLMClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	result, err := c.primary.Generate(ctx, req)
	if err == nil {
		return result, nil
	}

	c.logger.Warn("primary LLM failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)

	if c.fallback == nil {
		return GenerateResult{}, err
	}

	fallbackReq := req
	if c.fallbackModel != "" {
		fallbackReq.Model = c.fallbackModel
	}
	fallbackResult, fallbackErr := c.fallback.Generate(ctx, fallbackReq)
	if fallbackErr != nil {
		c.logger.Error("fallback LLM also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return GenerateResult{}, fallbackErr
	}

	c.logger.Info("fallback LLM succeeded after primary failure")
	return fallbackResult, nil
}

var _ LLMClient = (*FallbackLLMClient)(nil)
