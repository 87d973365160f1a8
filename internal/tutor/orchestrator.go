package tutor

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"mentora/internal/domain/models"
	"mentora/internal/llm"
)

// illustrateDirective matches the single bracketed illustration directive the
// model may embed in its answer, e.g. [ILLUSTRATE: a right triangle with ...].
var illustrateDirective = regexp.MustCompile(`\[ILLUSTRATE:\s*([^\]]+)\]`)

// Request is the tuple that determines model choice, instructions and
// context for one generation cycle. Constructed fresh per call, never
// persisted.
type Request struct {
	// Prompt may be empty if an attachment is present.
	Prompt string

	// History is the ordered prior turns, oldest first.
	History []models.Turn

	// Prefs carries level, syllabus, language, mode, depth, focus areas and
	// the guided-question toggle.
	Prefs models.Preferences

	// Attachment is an optional image or PDF payload.
	Attachment *models.Attachment

	// Image, when non-nil, is a caller-supplied image; the illustration
	// directive is still stripped but no generation call is made.
	Image *models.Attachment
}

// Result is what reaches the caller: final text, deduplicated citations, an
// optional generated image, and an error flag. Raw errors never cross this
// boundary; failures arrive as localized text with IsError set.
type Result struct {
	Text      string             `json:"text"`
	Citations []models.Citation  `json:"citations,omitempty"`
	Image     *models.Attachment `json:"image,omitempty"`
	IsError   bool               `json:"isError"`
}

// ConnectivityProbe reports whether the service can reach the network. A nil
// probe means always online.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// Orchestrator mediates one request/response cycle with the generation
// provider: profile selection, instruction composition, retry with backoff,
// stream accumulation and illustration post-processing. It holds no state
// between calls and is safe to invoke repeatedly with fresh arguments.
type Orchestrator struct {
	registry *llm.Registry
	profiles *Profiles
	probe    ConnectivityProbe
	logger   *slog.Logger

	maxAttempts    int
	initialBackoff time.Duration
	grounding      bool
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMaxAttempts overrides the retry bound.
func WithMaxAttempts(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithInitialBackoff overrides the first retry delay.
func WithInitialBackoff(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.initialBackoff = d
		}
	}
}

// WithConnectivityProbe sets the pre-request connectivity check.
func WithConnectivityProbe(p ConnectivityProbe) OrchestratorOption {
	return func(o *Orchestrator) { o.probe = p }
}

// WithSearchGrounding toggles search-grounded citations on chat responses.
func WithSearchGrounding(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) { o.grounding = enabled }
}

// NewOrchestrator creates an orchestrator over the provider registry.
func NewOrchestrator(registry *llm.Registry, profiles *Profiles, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:       registry,
		profiles:       profiles,
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		grounding:      true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Respond runs one streaming generation cycle. onChunk receives the
// cumulative text so far on every fragment, so callers overwrite rather than
// append. Fragments are delivered strictly in arrival order and each
// delivered value is a superset of the previous one.
//
// The returned Result is never accompanied by an error: failures are
// converted to a localized message with IsError set.
func (o *Orchestrator) Respond(ctx context.Context, req *Request, onChunk func(cumulative string)) *Result {
	lang := req.Prefs.Language

	if o.probe != nil && !o.probe.Online(ctx) {
		return o.failure(FailureOffline, lang, nil)
	}

	profile := o.profiles.Select(req.Prefs.Level, req.Prefs.Depth, req.Prefs.Mode)
	genReq := o.buildGenerateRequest(req, profile)
	genReq.GroundWithSearch = o.grounding

	provider, err := o.registry.ForModel(profile.Model)
	if err != nil {
		o.logger.Error("no provider for model", "model", profile.Model, "error", err)
		return o.failure(FailureGeneric, lang, err)
	}

	var (
		finalText string
		citations []models.Citation
	)

	err = o.withRetry(ctx, func() error {
		stream, err := provider.StreamResponse(ctx, genReq)
		if err != nil {
			return err
		}

		// Each attempt restarts accumulation; the callback contract is
		// cumulative-within-one-response, and callers overwrite.
		var accumulated strings.Builder
		seenURIs := make(map[string]bool)
		var streamCitations []models.Citation

		for event := range stream {
			if event.Err != nil {
				return event.Err
			}
			if event.TextDelta != "" {
				accumulated.WriteString(event.TextDelta)
				if onChunk != nil {
					onChunk(accumulated.String())
				}
			}
			for _, c := range event.Citations {
				if c.URI == "" || seenURIs[c.URI] {
					continue
				}
				seenURIs[c.URI] = true
				streamCitations = append(streamCitations, c)
			}
		}

		finalText = accumulated.String()
		citations = streamCitations
		return nil
	})
	if err != nil {
		return o.failure(o.classify(err), lang, err)
	}

	result := &Result{
		Text:      finalText,
		Citations: citations,
		Image:     req.Image,
	}
	o.resolveIllustration(ctx, result)
	return result
}

// RespondOnce is the non-streaming variant: identical request construction
// and retry handling, final result only, no illustration post-processing.
func (o *Orchestrator) RespondOnce(ctx context.Context, req *Request) *Result {
	lang := req.Prefs.Language

	if o.probe != nil && !o.probe.Online(ctx) {
		return o.failure(FailureOffline, lang, nil)
	}

	profile := o.profiles.Select(req.Prefs.Level, req.Prefs.Depth, req.Prefs.Mode)
	genReq := o.buildGenerateRequest(req, profile)
	genReq.GroundWithSearch = o.grounding

	provider, err := o.registry.ForModel(profile.Model)
	if err != nil {
		o.logger.Error("no provider for model", "model", profile.Model, "error", err)
		return o.failure(FailureGeneric, lang, err)
	}

	var resp *llm.GenerateResponse
	err = o.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = provider.GenerateResponse(ctx, genReq)
		return callErr
	})
	if err != nil {
		return o.failure(o.classify(err), lang, err)
	}

	return &Result{
		Text:      resp.Text,
		Citations: resp.Citations,
	}
}

// buildGenerateRequest maps history, prompt, attachment and preferences onto
// a provider request. Focus-area tags are injected into the request context
// as a bracketed preamble on the outgoing prompt.
func (o *Orchestrator) buildGenerateRequest(req *Request, profile ModelProfile) *llm.GenerateRequest {
	messages := make([]llm.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		messages = append(messages, llm.Message{
			Role:       turn.Role,
			Text:       turn.Text,
			Attachment: turn.Attachment,
		})
	}

	prompt := req.Prompt
	if len(req.Prefs.FocusAreas) > 0 {
		prompt = "[Focus areas: " + strings.Join(req.Prefs.FocusAreas, ", ") + "]\n" + prompt
	}
	messages = append(messages, llm.Message{
		Role:       models.RoleUser,
		Text:       prompt,
		Attachment: req.Attachment,
	})

	temp := profile.Temperature
	return &llm.GenerateRequest{
		Model:           profile.Model,
		System:          ComposeSystem(req.Prefs.Language, req.Prefs.Syllabus, req.Prefs.Mode, req.Prefs.GuidedQuestions),
		Messages:        messages,
		Temperature:     &temp,
		MaxOutputTokens: profile.MaxOutputTokens,
		ThinkingBudget:  profile.ThinkingBudget,
	}
}

// resolveIllustration scans the final text for an illustration directive,
// strips every occurrence from the visible text, and generates an image from
// the captured description when the caller did not supply one. Generation failure
// is logged and swallowed; the text-only response still stands.
func (o *Orchestrator) resolveIllustration(ctx context.Context, result *Result) {
	match := illustrateDirective.FindStringSubmatch(result.Text)
	if match == nil {
		return
	}
	description := strings.TrimSpace(match[1])
	result.Text = strings.TrimSpace(illustrateDirective.ReplaceAllString(result.Text, ""))

	if result.Image != nil {
		return
	}

	generator := o.registry.Images()
	if generator == nil {
		return
	}

	image, err := generator.GenerateImage(ctx, &llm.ImageRequest{Description: description})
	if err != nil {
		o.logger.Warn("illustration generation failed", "error", err)
		return
	}
	result.Image = image
}

// classify maps a terminal error onto the user-facing failure taxonomy.
func (o *Orchestrator) classify(err error) FailureKind {
	switch {
	case llm.IsAuth(err):
		return FailureAuth
	case llm.IsRateLimited(err):
		return FailureRateLimited
	case llm.IsTransient(err):
		return FailureTransient
	default:
		return FailureGeneric
	}
}

func (o *Orchestrator) failure(kind FailureKind, lang models.Language, err error) *Result {
	if err != nil {
		o.logger.Error("generation failed", "kind", int(kind), "error", err)
	}
	return &Result{
		Text:    FailureMessage(kind, lang),
		IsError: true,
	}
}
