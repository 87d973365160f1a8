package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"

	"mentora/internal/llm"
)

// StreamResponse generates a streaming response from Claude.
// Returns a channel that emits StreamEvent as deltas arrive from the API.
func (p *Provider) StreamResponse(ctx context.Context, req *llm.GenerateRequest) (<-chan llm.StreamEvent, error) {
	apiParams, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	eventChan := make(chan llm.StreamEvent, 10) // buffered to prevent blocking

	go func() {
		defer close(eventChan)

		stream := p.client.Messages.NewStreaming(ctx, apiParams)

		// Accumulator for final message metadata
		message := anthropic.Message{}

		for stream.Next() {
			event := stream.Current()

			if err := message.Accumulate(event); err != nil {
				eventChan <- llm.StreamEvent{Err: wrapError(err)}
				return
			}

			deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			if deltaEvent.Delta.Type != "text_delta" || deltaEvent.Delta.Text == "" {
				continue
			}

			select {
			case <-ctx.Done():
				eventChan <- llm.StreamEvent{Err: ctx.Err()}
				return
			case eventChan <- llm.StreamEvent{TextDelta: deltaEvent.Delta.Text}:
			}
		}

		if err := stream.Err(); err != nil {
			eventChan <- llm.StreamEvent{Err: wrapError(err)}
			return
		}

		eventChan <- llm.StreamEvent{
			Metadata: &llm.StreamMetadata{
				Model:        string(message.Model),
				InputTokens:  int(message.Usage.InputTokens),
				OutputTokens: int(message.Usage.OutputTokens),
				StopReason:   string(message.StopReason),
			},
		}
	}()

	return eventChan, nil
}
