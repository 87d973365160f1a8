package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"mentora/internal/llm"
)

// Provider is a mock generation provider that streams lorem ipsum text.
// Used for development without real API keys.
type Provider struct {
	generator *loremgen.Lorem
	catchAll  bool
}

// NewProvider creates a new lorem ipsum provider claiming lorem-* models.
func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

// NewFallbackProvider creates a lorem ipsum provider that claims every model.
// Registered in keyless runs so the tutoring profiles, which name real
// provider models, still resolve to a working stream.
func NewFallbackProvider() *Provider {
	return &Provider{generator: loremgen.New(), catchAll: true}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-", or for
// any model when the provider stands in as the keyless fallback.
func (p *Provider) SupportsModel(model string) bool {
	return p.catchAll || strings.HasPrefix(model, "lorem-")
}

// streamDelay returns the per-word delay based on the model name.
func streamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return 33 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}

// GenerateResponse returns a complete lorem ipsum response.
func (p *Provider) GenerateResponse(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	text := p.generateWords(maxTokens)
	return &llm.GenerateResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  p.estimateTokens(req.Messages),
		OutputTokens: len(strings.Fields(text)),
		StopReason:   "end_turn",
	}, nil
}

// StreamResponse streams lorem ipsum words one at a time. Speed varies with
// the model name.
func (p *Provider) StreamResponse(ctx context.Context, req *llm.GenerateRequest) (<-chan llm.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	eventChan := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		text := p.generateWords(maxTokens)
		words := strings.Fields(text)
		delay := streamDelay(req.Model)

		sent := 0
		for _, word := range words {
			select {
			case <-ctx.Done():
				eventChan <- llm.StreamEvent{Err: ctx.Err()}
				return
			default:
			}

			eventChan <- llm.StreamEvent{TextDelta: word + " "}
			time.Sleep(delay)
			sent++
		}

		eventChan <- llm.StreamEvent{
			Metadata: &llm.StreamMetadata{
				Model:        req.Model,
				InputTokens:  p.estimateTokens(req.Messages),
				OutputTokens: sent,
				StopReason:   "end_turn",
			},
		}
	}()

	return eventChan, nil
}

// generateWords produces roughly targetWords words of lorem ipsum.
func (p *Provider) generateWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))

		if wordCount%50 == 0 {
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens uses word count as a rough token approximation.
func (p *Provider) estimateTokens(messages []llm.Message) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Text))
	}
	return total
}
