package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mentora/internal/llm"
)

// StreamResponse performs a streaming generation call via
// streamGenerateContent (alt=sse). Returns a channel that emits StreamEvent
// as fragments arrive; the channel is closed when the stream ends.
func (p *Provider) StreamResponse(ctx context.Context, req *llm.GenerateRequest) (<-chan llm.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model %q is not supported by Gemini provider", req.Model)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, req.Model)

	payload, err := json.Marshal(buildWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, readErr := readBody(resp)
		if readErr != nil {
			return nil, readErr
		}
		return nil, decodeError(resp.StatusCode, raw)
	}

	eventChan := make(chan llm.StreamEvent, 10) // buffered to prevent blocking

	go func() {
		defer close(eventChan)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

		seenURIs := make(map[string]bool)
		var metadata llm.StreamMetadata
		metadata.Model = req.Model

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue // SSE comments and blank separators
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || data == "[DONE]" {
				continue
			}

			var chunk generateResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				eventChan <- llm.StreamEvent{Err: fmt.Errorf("parse stream chunk: %w", err)}
				return
			}

			event := llm.StreamEvent{}
			if len(chunk.Candidates) > 0 {
				cand := chunk.Candidates[0]
				if cand.Content != nil {
					var delta strings.Builder
					for _, pt := range cand.Content.Parts {
						delta.WriteString(pt.Text)
					}
					event.TextDelta = delta.String()
				}
				event.Citations = extractCitations(cand.GroundingMetadata, seenURIs)
				if cand.FinishReason != "" {
					metadata.StopReason = cand.FinishReason
				}
			}
			if chunk.UsageMetadata != nil {
				metadata.InputTokens = chunk.UsageMetadata.PromptTokenCount
				metadata.OutputTokens = chunk.UsageMetadata.CandidatesTokenCount
			}
			if chunk.ModelVersion != "" {
				metadata.Model = chunk.ModelVersion
			}

			if event.TextDelta == "" && len(event.Citations) == 0 {
				continue
			}

			select {
			case <-ctx.Done():
				eventChan <- llm.StreamEvent{Err: ctx.Err()}
				return
			case eventChan <- event:
			}
		}

		if err := scanner.Err(); err != nil {
			eventChan <- llm.StreamEvent{Err: fmt.Errorf("stream read error: %w", err)}
			return
		}

		eventChan <- llm.StreamEvent{Metadata: &metadata}
	}()

	return eventChan, nil
}
