package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"mentora/internal/domain"
	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
	"mentora/internal/httputil"
	"mentora/internal/tutor"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	// Generation failures carry a localized user-facing message. The status
	// is 502 for provider-side failures, 503 for offline.
	var genErr *tutor.GenerationError
	if errors.As(err, &genErr) {
		status := http.StatusBadGateway
		if genErr.Kind == tutor.FailureOffline {
			status = http.StatusServiceUnavailable
		}
		httputil.RespondError(w, status, genErr.Message)
		return
	}

	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

// parseUUID validates a string as a UUID
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// loadPreferences returns the user's saved tutoring profile, or defaults when
// none exists or the lookup fails. Generation must not be blocked by a
// preferences read.
func loadPreferences(r *http.Request, repo repositories.PreferencesRepository, logger *slog.Logger) models.Preferences {
	userID := httputil.GetUserID(r)
	uid, err := parseUUID(userID)
	if err != nil {
		return models.DefaultPreferences()
	}

	stored, err := repo.GetByUserID(r.Context(), uid)
	if err != nil {
		logger.Warn("preferences lookup failed, using defaults", "user_id", userID, "error", err)
		return models.DefaultPreferences()
	}
	if stored == nil {
		return models.DefaultPreferences()
	}
	return stored.Preferences
}
