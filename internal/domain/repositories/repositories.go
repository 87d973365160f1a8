package repositories

import (
	"context"

	"github.com/google/uuid"

	"mentora/internal/domain/models"
)

// ConversationRepository persists conversation turn histories. One JSON
// document per conversation; the turn array is replaced wholesale on save.
type ConversationRepository interface {
	// Upsert creates or replaces a conversation document owned by a user.
	Upsert(ctx context.Context, conv *models.Conversation) error

	// GetByID returns a conversation, or domain.ErrNotFound. A stored turn
	// payload that fails to decode yields an empty turn list, not an error.
	GetByID(ctx context.Context, id, userID string) (*models.Conversation, error)

	// ListByUser returns the user's conversations without their turn
	// payloads, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)

	// Delete removes a conversation owned by the user.
	Delete(ctx context.Context, id, userID string) error
}

// PreferencesRepository persists per-user tutoring profiles.
type PreferencesRepository interface {
	// GetByUserID returns the user's preferences, or nil when none were
	// ever saved (not an error).
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)

	// Upsert creates or updates the preferences document.
	Upsert(ctx context.Context, prefs *models.UserPreferences) error
}

// FeedbackRepository persists user feedback records.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ListByUser(ctx context.Context, userID string) ([]models.Feedback, error)
}
