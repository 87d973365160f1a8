package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
)

// PostgresPreferencesRepository implements PreferencesRepository using PostgreSQL.
type PostgresPreferencesRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPreferencesRepository creates a new PostgresPreferencesRepository
func NewPreferencesRepository(config *RepositoryConfig) repositories.PreferencesRepository {
	return &PostgresPreferencesRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByUserID retrieves preferences for a specific user. A stored document
// that fails to decode is discarded and defaults are returned instead.
func (r *PostgresPreferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	query := fmt.Sprintf(`
		SELECT user_id, preferences, created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.UserPreferences)

	var prefs models.UserPreferences
	var raw []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&raw,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			// No preferences exist yet - return nil (not an error)
			return nil, nil
		}
		return nil, fmt.Errorf("get user preferences: %w", err)
	}

	if err := json.Unmarshal(raw, &prefs.Preferences); err != nil {
		r.logger.Warn("discarding unreadable preferences document",
			"user_id", userID,
			"error", err,
		)
		prefs.Preferences = models.DefaultPreferences()
	}

	return &prefs, nil
}

// Upsert creates or updates user preferences
func (r *PostgresPreferencesRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	doc, err := json.Marshal(prefs.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, r.tables.UserPreferences)

	err = r.pool.QueryRow(ctx, query,
		prefs.UserID,
		doc,
		prefs.CreatedAt,
		prefs.UpdatedAt,
	).Scan(&prefs.CreatedAt, &prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user preferences: %w", err)
	}

	return nil
}
