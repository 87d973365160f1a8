package handler

import (
	"log/slog"
	"net/http"

	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
	"mentora/internal/httputil"
	"mentora/internal/tutor"
)

// voiceModel is the live-audio dialog model the client connects to directly.
// The server only composes the session configuration; the audio transport is
// between the client and the provider.
const voiceModel = "gemini-2.5-flash-native-audio-preview-09-2025"

// VoiceHandler handles voice session configuration requests
type VoiceHandler struct {
	preferences repositories.PreferencesRepository
	logger      *slog.Logger
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(preferences repositories.PreferencesRepository, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{
		preferences: preferences,
		logger:      logger,
	}
}

// VoiceSessionResponse is the configuration bundle for a live-audio session.
type VoiceSessionResponse struct {
	Model             string          `json:"model"`
	SystemInstruction string          `json:"systemInstruction"`
	Language          models.Language `json:"language"`
}

// Session composes the model and system instruction for the client's
// live-audio session from the user's current preferences.
// GET /api/voice/session
func (h *VoiceHandler) Session(w http.ResponseWriter, r *http.Request) {
	prefs := loadPreferences(r, h.preferences, h.logger)

	httputil.RespondJSON(w, http.StatusOK, VoiceSessionResponse{
		Model:             voiceModel,
		SystemInstruction: tutor.ComposeSystem(prefs.Language, prefs.Syllabus, prefs.Mode, prefs.GuidedQuestions),
		Language:          prefs.Language,
	})
}
