package llm

import (
	"context"

	"mentora/internal/domain/models"
)

// Provider defines the interface that all generation providers must
// implement. The orchestrator only talks to this abstraction; provider
// adapters translate to their own wire formats.
type Provider interface {
	// GenerateResponse performs a single non-streaming generation call.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// StreamResponse performs a streaming generation call. The returned
	// channel emits StreamEvent values as fragments arrive and is closed by
	// the provider when the stream ends. Fragment order matches arrival
	// order.
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)

	// Name returns the provider name (e.g. "gemini", "anthropic")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// ImageGenerator is implemented by providers that can produce images.
// Illustration generation is always best-effort; callers treat a nil result
// or an error as "no image".
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req *ImageRequest) (*models.Attachment, error)
}

// GenerateRequest contains the parameters for one generation call.
type GenerateRequest struct {
	// Model is the bare model identifier (e.g. "gemini-2.5-flash")
	Model string

	// System is the composed system instruction block.
	System string

	// Messages is the ordered conversation context, oldest first.
	Messages []Message

	// Temperature overrides the provider default when non-nil.
	Temperature *float64

	// MaxOutputTokens caps visible output. Zero means provider default.
	MaxOutputTokens int

	// ThinkingBudget is the token allowance reserved for internal reasoning.
	// Zero disables thinking entirely.
	ThinkingBudget int

	// GroundWithSearch asks the provider to attach search-grounded citations.
	GroundWithSearch bool

	// ResponseSchema, when non-nil, constrains the output to a JSON document
	// matching the schema. Providers without structured output support
	// return an error.
	ResponseSchema map[string]interface{}
}

// Message is a single role-tagged content block in the conversation context.
type Message struct {
	Role       models.Role
	Text       string
	Attachment *models.Attachment
}

// GenerateResponse is the final result of one generation call.
type GenerateResponse struct {
	// Text is the full generated text (or the raw JSON document when a
	// response schema was set).
	Text string

	// Citations are grounding references, already deduplicated by URI.
	Citations []models.Citation

	// Model is the model that served the request.
	Model string

	InputTokens  int
	OutputTokens int
	StopReason   string
}

// StreamEvent is one item on a streaming response channel. Exactly one of
// the fields is meaningful per event; a Metadata event is the last event
// before the channel closes on success.
type StreamEvent struct {
	// TextDelta is an incremental text fragment (the delta, not cumulative).
	TextDelta string

	// Citations carries grounding references surfaced mid-stream.
	Citations []models.Citation

	// Metadata is the end-of-stream summary.
	Metadata *StreamMetadata

	// Err terminates the stream with a failure.
	Err error
}

// StreamMetadata is the end-of-stream summary for a streaming call.
type StreamMetadata struct {
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// ImageRequest asks an ImageGenerator for a single illustration.
type ImageRequest struct {
	// Description is the scene description captured from an
	// [ILLUSTRATE: ...] directive or supplied directly.
	Description string

	// Size is a hint like "1024x1024". Providers may ignore it.
	Size string
}
