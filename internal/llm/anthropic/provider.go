package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared"

	"mentora/internal/llm"
)

// Provider implements llm.Provider for Anthropic (Claude) models. Text-only:
// no grounding citations, no image generation, no structured output schema.
type Provider struct {
	client *anthropic.Client
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, llm.ErrNotConfigured
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "claude-")
}

// GenerateResponse generates a response from Claude.
func (p *Provider) GenerateResponse(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	apiParams, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, wrapError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	return &llm.GenerateResponse{
		Text:         text.String(),
		Model:        string(message.Model),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		StopReason:   string(message.StopReason),
	}, nil
}

// buildParams converts a domain request into Anthropic message params.
func (p *Provider) buildParams(req *llm.GenerateRequest) (anthropic.MessageNewParams, error) {
	if !p.SupportsModel(req.Model) {
		return anthropic.MessageNewParams{}, fmt.Errorf("model %q is not supported by Anthropic provider", req.Model)
	}
	if req.ResponseSchema != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("anthropic provider does not support structured output schemas")
	}

	maxTokens := int64(req.MaxOutputTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		text := msg.Text
		if text == "" {
			text = " " // the API rejects empty content
		}
		block := anthropic.NewTextBlock(text)
		if msg.Role == "user" {
			messages = append(messages, anthropic.NewUserMessage(block))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	if req.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*req.Temperature)
	}

	if req.System != "" {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: req.System,
			},
		}
	}

	if req.ThinkingBudget > 0 {
		apiParams.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(req.ThinkingBudget))
	}

	return apiParams, nil
}

// wrapError converts SDK errors into the canonical ProviderError so retry
// classification never inspects message strings. The SDK keeps the response
// body ({"type":"error","error":{"type":"overloaded_error",...}}) only as raw
// JSON; decode it to fill the structured Code.
func wrapError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		var body shared.ErrorResponse
		_ = json.Unmarshal([]byte(apierr.RawJSON()), &body)
		message := body.Error.Message
		if message == "" {
			message = apierr.RawJSON()
		}
		return &llm.ProviderError{
			Status:  apierr.StatusCode,
			Code:    body.Error.Type,
			Message: message,
		}
	}
	return fmt.Errorf("anthropic API call failed: %w", err)
}
