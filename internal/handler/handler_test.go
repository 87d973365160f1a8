package handler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"mentora/internal/domain"
	"mentora/internal/domain/models"
	"mentora/internal/llm"
	"mentora/internal/tutor"
)

// memConversationRepo is an in-memory ConversationRepository for handler tests.
type memConversationRepo struct {
	byID map[string]*models.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{byID: make(map[string]*models.Conversation)}
}

func (m *memConversationRepo) Upsert(ctx context.Context, conv *models.Conversation) error {
	if existing, ok := m.byID[conv.ID]; ok && existing.UserID != conv.UserID {
		return &domain.ForbiddenError{Message: "conversation belongs to another user"}
	}
	stored := *conv
	m.byID[conv.ID] = &stored
	return nil
}

func (m *memConversationRepo) GetByID(ctx context.Context, id, userID string) (*models.Conversation, error) {
	conv, ok := m.byID[id]
	if !ok || conv.UserID != userID {
		return nil, &domain.NotFoundError{Message: "conversation not found"}
	}
	copied := *conv
	return &copied, nil
}

func (m *memConversationRepo) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, conv := range m.byID {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (m *memConversationRepo) Delete(ctx context.Context, id, userID string) error {
	conv, ok := m.byID[id]
	if !ok || conv.UserID != userID {
		return &domain.NotFoundError{Message: "conversation not found"}
	}
	delete(m.byID, id)
	return nil
}

// memPreferencesRepo is an in-memory PreferencesRepository.
type memPreferencesRepo struct {
	byUser map[uuid.UUID]*models.UserPreferences
}

func newMemPreferencesRepo() *memPreferencesRepo {
	return &memPreferencesRepo{byUser: make(map[uuid.UUID]*models.UserPreferences)}
}

func (m *memPreferencesRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	prefs, ok := m.byUser[userID]
	if !ok {
		return nil, nil
	}
	copied := *prefs
	return &copied, nil
}

func (m *memPreferencesRepo) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	stored := *prefs
	m.byUser[prefs.UserID] = &stored
	return nil
}

// memFeedbackRepo is an in-memory FeedbackRepository.
type memFeedbackRepo struct {
	records []models.Feedback
}

func (m *memFeedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	m.records = append(m.records, *fb)
	return nil
}

func (m *memFeedbackRepo) ListByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	var out []models.Feedback
	for _, fb := range m.records {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out, nil
}

// scriptedProvider returns a fixed sequence of text deltas.
type scriptedProvider struct {
	deltas []string
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) SupportsModel(m string) bool { return true }

func (s *scriptedProvider) GenerateResponse(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	var text string
	for _, d := range s.deltas {
		text += d
	}
	return &llm.GenerateResponse{Text: text, Model: req.Model}, nil
}

func (s *scriptedProvider) StreamResponse(ctx context.Context, req *llm.GenerateRequest) (<-chan llm.StreamEvent, error) {
	ch := make(chan llm.StreamEvent, len(s.deltas))
	for _, d := range s.deltas {
		ch <- llm.StreamEvent{TextDelta: d}
	}
	close(ch)
	return ch, nil
}

func testOrchestrator(t *testing.T, provider llm.Provider) *tutor.Orchestrator {
	t.Helper()
	profiles, err := tutor.LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}
	return tutor.NewOrchestrator(llm.NewRegistry(provider), profiles, discardLogger(),
		tutor.WithInitialBackoff(time.Millisecond))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func req0ctx() context.Context {
	return context.Background()
}
