package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mentora/internal/domain/models"
	"mentora/internal/llm"
)

const (
	// DefaultBaseURL is the base URL for the Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout is the timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// DefaultImageModel serves illustration requests.
	DefaultImageModel = "gemini-2.5-flash-image"

	// maxResponseSize bounds response bodies to keep a misbehaving upstream
	// from exhausting memory.
	maxResponseSize = 32 * 1024 * 1024
)

// Provider implements llm.Provider against the Gemini REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	imageModel string
	httpClient *http.Client
	// streamClient has no timeout; streaming lifetime is context-controlled.
	streamClient *http.Client
	logger       *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimSuffix(url, "/") }
}

// WithImageModel overrides the illustration model.
func WithImageModel(model string) Option {
	return func(p *Provider) { p.imageModel = model }
}

// WithHTTPClient overrides both HTTP clients (used by tests).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
		p.streamClient = c
	}
}

// NewProvider creates a Gemini provider with the given API key.
func NewProvider(apiKey string, logger *slog.Logger, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, llm.ErrNotConfigured
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	p := &Provider{
		apiKey:       strings.TrimSpace(apiKey),
		baseURL:      DefaultBaseURL,
		imageModel:   DefaultImageModel,
		httpClient:   &http.Client{Transport: transport, Timeout: DefaultTimeout},
		streamClient: &http.Client{Transport: transport},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

// SupportsModel returns true for Gemini model identifiers.
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "gemini-")
}

// GenerateResponse performs a single non-streaming generation call.
func (p *Provider) GenerateResponse(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model %q is not supported by Gemini provider", req.Model)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, req.Model)

	var wireResp generateResponse
	if err := p.doRequest(ctx, url, buildWireRequest(req), &wireResp); err != nil {
		return nil, err
	}

	return convertResponse(&wireResp)
}

// GenerateImage produces a single illustration for the given description.
// Implements llm.ImageGenerator.
func (p *Provider) GenerateImage(ctx context.Context, req *llm.ImageRequest) (*models.Attachment, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.imageModel)

	prompt := req.Description
	if req.Size != "" {
		prompt = fmt.Sprintf("%s (target size %s)", prompt, req.Size)
	}

	wireReq := &generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var wireResp generateResponse
	if err := p.doRequest(ctx, url, wireReq, &wireResp); err != nil {
		return nil, err
	}

	for _, cand := range wireResp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, pt := range cand.Content.Parts {
			if pt.InlineData != nil && pt.InlineData.Data != "" {
				return &models.Attachment{
					Data:     pt.InlineData.Data,
					MimeType: pt.InlineData.MimeType,
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("image generation returned no image data")
}

// doRequest performs one POST round trip and decodes the response into dest.
func (p *Provider) doRequest(ctx context.Context, url string, body interface{}, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)
}

// readBody reads the response body with a size limit.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(raw)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", maxResponseSize)
	}
	return raw, nil
}

// decodeError converts an error payload into a ProviderError. The structured
// error envelope is the only classification source; when it cannot be parsed
// the HTTP status alone is kept.
func decodeError(statusCode int, raw []byte) error {
	pe := &llm.ProviderError{Status: statusCode}

	var envelope apiErrorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Status != "" {
		pe.Code = envelope.Error.Status
		pe.Message = envelope.Error.Message
		return pe
	}

	pe.Message = string(raw)
	return pe
}

// convertResponse maps a wire response onto the domain result, collecting
// text parts and deduplicating grounding citations by URI (first-seen wins).
func convertResponse(wireResp *generateResponse) (*llm.GenerateResponse, error) {
	if len(wireResp.Candidates) == 0 {
		return nil, fmt.Errorf("response contained no candidates")
	}
	cand := wireResp.Candidates[0]

	var text strings.Builder
	if cand.Content != nil {
		for _, pt := range cand.Content.Parts {
			text.WriteString(pt.Text)
		}
	}

	result := &llm.GenerateResponse{
		Text:       text.String(),
		Citations:  extractCitations(cand.GroundingMetadata, nil),
		Model:      wireResp.ModelVersion,
		StopReason: cand.FinishReason,
	}
	if wireResp.UsageMetadata != nil {
		result.InputTokens = wireResp.UsageMetadata.PromptTokenCount
		result.OutputTokens = wireResp.UsageMetadata.CandidatesTokenCount
	}
	return result, nil
}

// extractCitations converts grounding chunks into citations, skipping URIs
// already present in seen. Passing a nil map dedupes within the call only.
func extractCitations(gm *groundingMetadata, seen map[string]bool) []models.Citation {
	if gm == nil {
		return nil
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	var citations []models.Citation
	for _, chunk := range gm.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		citations = append(citations, models.Citation{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return citations
}

// buildWireRequest converts a domain request into the wire format.
func buildWireRequest(req *llm.GenerateRequest) *generateRequest {
	wireReq := &generateRequest{
		Contents: make([]content, 0, len(req.Messages)),
		GenerationConfig: &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
			ThinkingConfig:  &thinkingConfig{ThinkingBudget: req.ThinkingBudget},
		},
	}

	for _, msg := range req.Messages {
		c := content{Role: string(msg.Role)}
		if msg.Text != "" {
			c.Parts = append(c.Parts, part{Text: msg.Text})
		}
		if msg.Attachment != nil {
			c.Parts = append(c.Parts, part{InlineData: &inlineData{
				MimeType: msg.Attachment.MimeType,
				Data:     msg.Attachment.Data,
			}})
		}
		if len(c.Parts) == 0 {
			// The API rejects empty part lists.
			c.Parts = append(c.Parts, part{Text: " "})
		}
		wireReq.Contents = append(wireReq.Contents, c)
	}

	if req.System != "" {
		wireReq.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}

	if req.ResponseSchema != nil {
		wireReq.GenerationConfig.ResponseMimeType = "application/json"
		wireReq.GenerationConfig.ResponseSchema = req.ResponseSchema
	}

	if req.GroundWithSearch {
		wireReq.Tools = append(wireReq.Tools, tool{GoogleSearch: &struct{}{}})
	}

	return wireReq
}
