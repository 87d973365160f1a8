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

// NotesHandler handles study-note synthesis HTTP requests
type NotesHandler struct {
	orchestrator *tutor.Orchestrator
	preferences  repositories.PreferencesRepository
	logger       *slog.Logger
}

// NewNotesHandler creates a new notes handler
func NewNotesHandler(orchestrator *tutor.Orchestrator, preferences repositories.PreferencesRepository, logger *slog.Logger) *NotesHandler {
	return &NotesHandler{
		orchestrator: orchestrator,
		preferences:  preferences,
		logger:       logger,
	}
}

// SynthesizeNotesRequest is the body for POST /api/notes. At least one
// attachment or a pasted-text block is required.
type SynthesizeNotesRequest struct {
	Attachments []models.Attachment `json:"attachments,omitempty"`
	PastedText  string              `json:"pastedText,omitempty"`
}

// Validate implements request validation
func (r SynthesizeNotesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PastedText,
			validation.Required.When(len(r.Attachments) == 0).Error("attachments or pasted text is required"),
			validation.Length(0, 200000),
		),
		validation.Field(&r.Attachments, validation.Length(0, 10)),
	)
}

// NotesResponse carries the synthesized document.
type NotesResponse struct {
	Notes string `json:"notes"`
}

// Synthesize produces one study-note document from the supplied material.
// POST /api/notes
func (h *NotesHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeNotesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := loadPreferences(r, h.preferences, h.logger)

	notes, err := h.orchestrator.SynthesizeNotes(r.Context(), &tutor.NotesRequest{
		Attachments: req.Attachments,
		PastedText:  req.PastedText,
		Prefs:       prefs,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, NotesResponse{Notes: notes})
}
