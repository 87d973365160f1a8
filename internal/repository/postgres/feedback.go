package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentora/internal/domain"
	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
)

// PostgresFeedbackRepository implements FeedbackRepository using PostgreSQL.
type PostgresFeedbackRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFeedbackRepository creates a new PostgresFeedbackRepository
func NewFeedbackRepository(config *RepositoryConfig) repositories.FeedbackRepository {
	return &PostgresFeedbackRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create stores a feedback record.
func (r *PostgresFeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Feedback)

	_, err := r.pool.Exec(ctx, query,
		fb.ID,
		fb.UserID,
		fb.Rating,
		fb.Comment,
		fb.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{Message: "feedback already exists"}
		}
		return fmt.Errorf("create feedback: %w", err)
	}

	return nil
}

// ListByUser returns the user's feedback records, newest first.
func (r *PostgresFeedbackRepository) ListByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, rating, comment, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Feedback)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	records := []models.Feedback{}
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		records = append(records, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	return records, nil
}
