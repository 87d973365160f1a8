package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentora/internal/domain"
	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
)

// PostgresConversationRepository implements ConversationRepository using PostgreSQL.
// Turn histories live in a single JSONB column, mirroring the one-document-
// per-conversation contract the web client had with localStorage.
type PostgresConversationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new PostgresConversationRepository
func NewConversationRepository(config *RepositoryConfig) repositories.ConversationRepository {
	return &PostgresConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert creates or replaces a conversation document.
func (r *PostgresConversationRepository) Upsert(ctx context.Context, conv *models.Conversation) error {
	turns, err := json.Marshal(conv.Turns)
	if err != nil {
		return fmt.Errorf("encode turns: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, title, turns, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			turns = EXCLUDED.turns,
			updated_at = EXCLUDED.updated_at
		WHERE %s.user_id = EXCLUDED.user_id
	`, r.tables.Conversations, r.tables.Conversations)

	tag, err := r.pool.Exec(ctx, query,
		conv.ID,
		conv.UserID,
		conv.Title,
		turns,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// The id exists but belongs to another user.
		return &domain.ForbiddenError{Message: "conversation belongs to another user"}
	}

	return nil
}

// GetByID returns a conversation with its turn history. A stored payload
// that no longer decodes is discarded: the conversation comes back with an
// empty turn list rather than an error.
func (r *PostgresConversationRepository) GetByID(ctx context.Context, id, userID string) (*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, turns, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	var conv models.Conversation
	var rawTurns []byte
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&rawTurns,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: "conversation not found"}
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if err := json.Unmarshal(rawTurns, &conv.Turns); err != nil {
		r.logger.Warn("discarding unreadable turn history",
			"conversation_id", id,
			"error", err,
		)
		conv.Turns = []models.Turn{}
	}

	return &conv, nil
}

// ListByUser returns conversation summaries (no turn payloads), most
// recently updated first.
func (r *PostgresConversationRepository) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Conversations)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	return conversations, nil
}

// Delete removes a conversation owned by the user.
func (r *PostgresConversationRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: "conversation not found"}
	}

	return nil
}
