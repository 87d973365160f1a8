package tutor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"mentora/internal/domain/models"
	"mentora/internal/llm"
)

// fakeProvider scripts streaming and non-streaming responses for orchestrator
// tests. Each call to StreamResponse consumes the next script entry, so a
// test can fail the first attempt and succeed on the retry.
type fakeProvider struct {
	name    string
	prefix  string
	scripts []fakeScript
	calls   int

	// lastRequest records the most recent request for assertions.
	lastRequest *llm.GenerateRequest

	// image generation
	generatedImage *models.Attachment
	imageErr       error
	imageCalls     int
	lastImageReq   *llm.ImageRequest
}

type fakeScript struct {
	events []llm.StreamEvent
	err    error // returned from the call itself, before any events
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) SupportsModel(model string) bool {
	if f.prefix == "" {
		return true
	}
	return len(model) >= len(f.prefix) && model[:len(f.prefix)] == f.prefix
}

func (f *fakeProvider) script() fakeScript {
	if f.calls >= len(f.scripts) {
		return fakeScript{}
	}
	s := f.scripts[f.calls]
	f.calls++
	return s
}

func (f *fakeProvider) StreamResponse(ctx context.Context, req *llm.GenerateRequest) (<-chan llm.StreamEvent, error) {
	f.lastRequest = req
	s := f.script()
	if s.err != nil {
		return nil, s.err
	}

	ch := make(chan llm.StreamEvent, len(s.events)+1)
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (f *fakeProvider) GenerateResponse(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.lastRequest = req
	s := f.script()
	if s.err != nil {
		return nil, s.err
	}

	var text string
	var citations []models.Citation
	for _, ev := range s.events {
		if ev.Err != nil {
			return nil, ev.Err
		}
		text += ev.TextDelta
		citations = append(citations, ev.Citations...)
	}
	return &llm.GenerateResponse{Text: text, Citations: citations, Model: req.Model}, nil
}

func (f *fakeProvider) GenerateImage(ctx context.Context, req *llm.ImageRequest) (*models.Attachment, error) {
	f.imageCalls++
	f.lastImageReq = req
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.generatedImage, nil
}

// offlineProbe always reports the given state.
type offlineProbe struct{ online bool }

func (p offlineProbe) Online(ctx context.Context) bool { return p.online }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testOrchestrator(t *testing.T, provider *fakeProvider, opts ...OrchestratorOption) *Orchestrator {
	t.Helper()
	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}
	base := []OrchestratorOption{WithInitialBackoff(time.Millisecond)}
	return NewOrchestrator(llm.NewRegistry(provider), profiles, testLogger(), append(base, opts...)...)
}

func textEvents(deltas ...string) []llm.StreamEvent {
	events := make([]llm.StreamEvent, 0, len(deltas))
	for _, d := range deltas {
		events = append(events, llm.StreamEvent{TextDelta: d})
	}
	return events
}

func defaultPrefs() models.Preferences {
	return models.DefaultPreferences()
}
