package handler

import (
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
	"mentora/internal/httputil"
)

// PreferencesHandler handles user preferences HTTP requests
type PreferencesHandler struct {
	preferences repositories.PreferencesRepository
	logger      *slog.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(preferences repositories.PreferencesRepository, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		preferences: preferences,
		logger:      logger,
	}
}

// UpdatePreferencesRequest is the body for PATCH /api/users/me/preferences.
// Pointer fields distinguish "not sent" from "set to zero value".
type UpdatePreferencesRequest struct {
	DisplayName     *string   `json:"display_name,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	Level           *string   `json:"level,omitempty"`
	Syllabus        *string   `json:"syllabus,omitempty"`
	Language        *string   `json:"language,omitempty"`
	Mode            *string   `json:"mode,omitempty"`
	Depth           *string   `json:"depth,omitempty"`
	FocusAreas      *[]string `json:"focus_areas,omitempty"`
	GuidedQuestions *bool     `json:"guided_questions,omitempty"`
}

// Validate implements request validation
func (r UpdatePreferencesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Length(0, 100)),
		validation.Field(&r.Level, validation.In(
			string(models.LevelBeginner),
			string(models.LevelIntermediate),
			string(models.LevelAdvanced),
		)),
		validation.Field(&r.Language, validation.In(
			string(models.LanguageEN),
			string(models.LanguageFR),
		)),
		validation.Field(&r.Mode, validation.In(
			string(models.ModeStepByStep),
			string(models.ModeExamFormal),
			string(models.ModeAnswerOnly),
		)),
		validation.Field(&r.Depth, validation.In(
			string(models.DepthFast),
			string(models.DepthDeep),
		)),
	)
}

// Get retrieves the user's preferences, defaults if never saved.
// GET /api/users/me/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	uid, err := parseUUID(userID)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	stored, err := h.preferences.GetByUserID(r.Context(), uid)
	if err != nil {
		handleError(w, err)
		return
	}
	if stored == nil {
		now := time.Now().UTC()
		stored = &models.UserPreferences{
			UserID:      uid,
			Preferences: models.DefaultPreferences(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	httputil.RespondJSON(w, http.StatusOK, stored)
}

// Update applies a partial update to the user's preferences.
// PATCH /api/users/me/preferences
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	uid, err := parseUUID(userID)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var req UpdatePreferencesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.preferences.GetByUserID(r.Context(), uid)
	if err != nil {
		handleError(w, err)
		return
	}
	now := time.Now().UTC()
	if stored == nil {
		stored = &models.UserPreferences{
			UserID:      uid,
			Preferences: models.DefaultPreferences(),
			CreatedAt:   now,
		}
	}
	stored.UpdatedAt = now

	applyPreferencesUpdate(&stored.Preferences, &req)

	if err := h.preferences.Upsert(r.Context(), stored); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stored)
}

func applyPreferencesUpdate(prefs *models.Preferences, req *UpdatePreferencesRequest) {
	if req.DisplayName != nil {
		prefs.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		prefs.AvatarURL = *req.AvatarURL
	}
	if req.Level != nil {
		prefs.Level = models.Level(*req.Level)
	}
	if req.Syllabus != nil {
		// Unknown tags collapse to no syllabus rather than erroring.
		prefs.Syllabus = models.ParseSyllabus(*req.Syllabus)
	}
	if req.Language != nil {
		prefs.Language = models.Language(*req.Language)
	}
	if req.Mode != nil {
		prefs.Mode = models.Mode(*req.Mode)
	}
	if req.Depth != nil {
		prefs.Depth = models.Depth(*req.Depth)
	}
	if req.FocusAreas != nil {
		prefs.FocusAreas = *req.FocusAreas
	}
	if req.GuidedQuestions != nil {
		prefs.GuidedQuestions = *req.GuidedQuestions
	}
}
