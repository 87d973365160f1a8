package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
	"mentora/internal/httputil"
	"mentora/internal/tutor"
)

// IllustrationHandler handles single-shot illustration HTTP requests
type IllustrationHandler struct {
	orchestrator *tutor.Orchestrator
	preferences  repositories.PreferencesRepository
	logger       *slog.Logger
}

// NewIllustrationHandler creates a new illustration handler
func NewIllustrationHandler(orchestrator *tutor.Orchestrator, preferences repositories.PreferencesRepository, logger *slog.Logger) *IllustrationHandler {
	return &IllustrationHandler{
		orchestrator: orchestrator,
		preferences:  preferences,
		logger:       logger,
	}
}

// GenerateIllustrationRequest is the body for POST /api/illustrations.
type GenerateIllustrationRequest struct {
	Description string `json:"description"`
	Size        string `json:"size,omitempty"`
}

// Validate implements request validation
func (r GenerateIllustrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required, validation.Length(1, 2000)),
		validation.Field(&r.Size, validation.In("", "small", "medium", "large")),
	)
}

// IllustrationResponse carries the generated image.
type IllustrationResponse struct {
	Image *models.Attachment `json:"image"`
}

// Generate creates one illustration from a description. Inside a chat flow
// illustration failure is swallowed; on this direct endpoint it surfaces as
// an upstream error.
// POST /api/illustrations
func (h *IllustrationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateIllustrationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := loadPreferences(r, h.preferences, h.logger)

	image, err := h.orchestrator.Illustrate(r.Context(), req.Description, req.Size)
	if err != nil {
		handleError(w, err)
		return
	}
	if image == nil {
		httputil.RespondError(w, http.StatusBadGateway, tutor.FailureMessage(tutor.FailureGeneric, prefs.Language))
		return
	}

	httputil.RespondJSON(w, http.StatusOK, IllustrationResponse{Image: image})
}
