package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mentora/internal/domain/models"
	"mentora/internal/llm"
)

func TestRespondCumulativeCallback(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{
		{events: textEvents("The ", "answer ", "is ", "4.")},
	}}
	o := testOrchestrator(t, provider)

	var snapshots []string
	result := o.Respond(context.Background(), &Request{
		Prompt: "What is 2+2?",
		Prefs:  defaultPrefs(),
	}, func(cumulative string) {
		snapshots = append(snapshots, cumulative)
	})

	if result.IsError {
		t.Fatalf("Respond() returned error result: %q", result.Text)
	}
	if result.Text != "The answer is 4." {
		t.Errorf("final text = %q, want %q", result.Text, "The answer is 4.")
	}
	if len(snapshots) != 4 {
		t.Fatalf("callback fired %d times, want 4", len(snapshots))
	}
	// Each delivered value must extend the previous one.
	for i := 1; i < len(snapshots); i++ {
		if !strings.HasPrefix(snapshots[i], snapshots[i-1]) {
			t.Errorf("snapshot %d (%q) does not extend snapshot %d (%q)",
				i, snapshots[i], i-1, snapshots[i-1])
		}
	}
	if snapshots[len(snapshots)-1] != result.Text {
		t.Errorf("last snapshot = %q, want final text %q", snapshots[len(snapshots)-1], result.Text)
	}
}

func TestRespondCitationDedupe(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{
		{events: []llm.StreamEvent{
			{TextDelta: "a", Citations: []models.Citation{
				{Title: "First", URI: "https://example.com/a"},
				{Title: "Second", URI: "https://example.com/b"},
			}},
			{TextDelta: "b", Citations: []models.Citation{
				{Title: "Duplicate of first", URI: "https://example.com/a"},
				{Title: "No URI", URI: ""},
			}},
		}},
	}}
	o := testOrchestrator(t, provider)

	result := o.Respond(context.Background(), &Request{Prompt: "q", Prefs: defaultPrefs()}, nil)

	if len(result.Citations) != 2 {
		t.Fatalf("got %d citations, want 2: %+v", len(result.Citations), result.Citations)
	}
	// First-seen wins: the title from the first occurrence is kept.
	if result.Citations[0].Title != "First" || result.Citations[1].Title != "Second" {
		t.Errorf("citations = %+v, want first-seen order preserved", result.Citations)
	}
}

func TestRespondIllustrationDirective(t *testing.T) {
	image := &models.Attachment{Data: "aW1n", MimeType: "image/png"}
	provider := &fakeProvider{
		scripts: []fakeScript{
			{events: textEvents("Consider a triangle. [ILLUSTRATE: a right triangle with legs 3 and 4] The hypotenuse is 5.")},
		},
		generatedImage: image,
	}
	o := testOrchestrator(t, provider)

	result := o.Respond(context.Background(), &Request{Prompt: "q", Prefs: defaultPrefs()}, nil)

	if strings.Contains(result.Text, "ILLUSTRATE") {
		t.Errorf("directive not stripped from text: %q", result.Text)
	}
	if result.Text != "Consider a triangle.  The hypotenuse is 5." {
		t.Errorf("text = %q", result.Text)
	}
	if provider.imageCalls != 1 {
		t.Fatalf("image generator called %d times, want 1", provider.imageCalls)
	}
	if got := provider.lastImageReq.Description; got != "a right triangle with legs 3 and 4" {
		t.Errorf("description = %q", got)
	}
	if result.Image != image {
		t.Errorf("result image not attached")
	}
}

func TestRespondIllustrationFailureSwallowed(t *testing.T) {
	provider := &fakeProvider{
		scripts: []fakeScript{
			{events: textEvents("Text. [ILLUSTRATE: a diagram]")},
		},
		imageErr: errors.New("image backend down"),
	}
	o := testOrchestrator(t, provider)

	result := o.Respond(context.Background(), &Request{Prompt: "q", Prefs: defaultPrefs()}, nil)

	if result.IsError {
		t.Fatalf("image failure must not fail the response")
	}
	if result.Text != "Text." {
		t.Errorf("text = %q, want directive stripped", result.Text)
	}
	if result.Image != nil {
		t.Errorf("expected no image, got %+v", result.Image)
	}
}

func TestRespondCallerImageSkipsGeneration(t *testing.T) {
	callerImage := &models.Attachment{Data: "dXNlcg==", MimeType: "image/png"}
	provider := &fakeProvider{
		scripts:        []fakeScript{{events: textEvents("See sketch. [ILLUSTRATE: something]")}},
		generatedImage: &models.Attachment{Data: "Z2Vu", MimeType: "image/png"},
	}
	o := testOrchestrator(t, provider)

	result := o.Respond(context.Background(), &Request{
		Prompt: "q",
		Prefs:  defaultPrefs(),
		Image:  callerImage,
	}, nil)

	if provider.imageCalls != 0 {
		t.Errorf("image generator called %d times, want 0", provider.imageCalls)
	}
	if result.Image != callerImage {
		t.Errorf("caller image must be preserved")
	}
	if strings.Contains(result.Text, "ILLUSTRATE") {
		t.Errorf("directive still stripped even with caller image: %q", result.Text)
	}
}

func TestRespondOfflineShortCircuit(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{{events: textEvents("never")}}}
	o := testOrchestrator(t, provider, WithConnectivityProbe(offlineProbe{online: false}))

	prefs := defaultPrefs()
	prefs.Language = models.LanguageFR
	result := o.Respond(context.Background(), &Request{Prompt: "q", Prefs: prefs}, nil)

	if !result.IsError {
		t.Fatalf("expected error result when offline")
	}
	if result.Text != FailureMessage(FailureOffline, models.LanguageFR) {
		t.Errorf("text = %q, want localized offline message", result.Text)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times while offline, want 0", provider.calls)
	}
}

func TestRespondAuthFailureLocalized(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{
		{err: &llm.ProviderError{Status: 403, Code: "PERMISSION_DENIED", Message: "key invalid"}},
	}}
	o := testOrchestrator(t, provider)

	prefs := defaultPrefs()
	prefs.Language = models.LanguageFR
	result := o.Respond(context.Background(), &Request{Prompt: "q", Prefs: prefs}, nil)

	if !result.IsError {
		t.Fatalf("expected error result")
	}
	if result.Text != FailureMessage(FailureAuth, models.LanguageFR) {
		t.Errorf("text = %q, want localized auth message", result.Text)
	}
	if provider.calls != 1 {
		t.Errorf("auth errors must not be retried, got %d calls", provider.calls)
	}
}

func TestRespondRetriesTransientThenSucceeds(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{
		{err: &llm.ProviderError{Status: 503, Code: "UNAVAILABLE", Message: "overloaded"}},
		{events: textEvents("x = 5")},
	}}
	o := testOrchestrator(t, provider)

	result := o.Respond(context.Background(), &Request{Prompt: "solve", Prefs: defaultPrefs()}, nil)

	if result.IsError {
		t.Fatalf("expected success after retry, got %q", result.Text)
	}
	if result.Text != "x = 5" {
		t.Errorf("text = %q", result.Text)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestRespondAccumulatorResetsBetweenAttempts(t *testing.T) {
	// First attempt streams some text then dies mid-stream with a transient
	// error; the retry must not leak the partial text into the final result.
	provider := &fakeProvider{scripts: []fakeScript{
		{events: []llm.StreamEvent{
			{TextDelta: "partial "},
			{Err: &llm.ProviderError{Status: 503, Code: "UNAVAILABLE"}},
		}},
		{events: textEvents("clean answer")},
	}}
	o := testOrchestrator(t, provider)

	var last string
	result := o.Respond(context.Background(), &Request{Prompt: "q", Prefs: defaultPrefs()}, func(cumulative string) {
		last = cumulative
	})

	if result.Text != "clean answer" {
		t.Errorf("text = %q, want %q", result.Text, "clean answer")
	}
	if last != "clean answer" {
		t.Errorf("final callback value = %q, want %q", last, "clean answer")
	}
}

func TestRespondAnswerOnlyUsesOverrideProfile(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{{events: textEvents("$$x = 5$$")}}}
	o := testOrchestrator(t, provider)

	prefs := defaultPrefs()
	prefs.Mode = models.ModeAnswerOnly
	prefs.Level = models.LevelAdvanced
	prefs.Depth = models.DepthDeep
	o.Respond(context.Background(), &Request{Prompt: "solve 3x = 15", Prefs: prefs}, nil)

	req := provider.lastRequest
	if req.Model != "gemini-2.5-flash-lite" {
		t.Errorf("model = %q, want fastest model in answer-only mode", req.Model)
	}
	if req.ThinkingBudget != 0 {
		t.Errorf("thinking budget = %d, want 0", req.ThinkingBudget)
	}
	if !strings.Contains(req.System, "only the final answer") {
		t.Errorf("system instruction missing answer-only block: %q", req.System)
	}
}

func TestRespondFocusAreasInjected(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{{events: textEvents("ok")}}}
	o := testOrchestrator(t, provider)

	prefs := defaultPrefs()
	prefs.FocusAreas = []string{"trigonometry", "vectors"}
	o.Respond(context.Background(), &Request{Prompt: "help", Prefs: prefs}, nil)

	last := provider.lastRequest.Messages[len(provider.lastRequest.Messages)-1]
	if !strings.HasPrefix(last.Text, "[Focus areas: trigonometry, vectors]") {
		t.Errorf("prompt = %q, want focus-area preamble", last.Text)
	}
	if !strings.Contains(last.Text, "help") {
		t.Errorf("prompt lost the user text: %q", last.Text)
	}
}

func TestRespondHistoryMapped(t *testing.T) {
	provider := &fakeProvider{scripts: []fakeScript{{events: textEvents("ok")}}}
	o := testOrchestrator(t, provider)

	history := []models.Turn{
		{Role: models.RoleUser, Text: "first question"},
		{Role: models.RoleModel, Text: "first answer"},
	}
	o.Respond(context.Background(), &Request{Prompt: "followup", History: history, Prefs: defaultPrefs()}, nil)

	msgs := provider.lastRequest.Messages
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Text != "first question" {
		t.Errorf("msg[0] = %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleModel || msgs[1].Text != "first answer" {
		t.Errorf("msg[1] = %+v", msgs[1])
	}
	if msgs[2].Text != "followup" {
		t.Errorf("msg[2] = %+v", msgs[2])
	}
}
