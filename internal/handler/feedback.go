package handler

import (
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
	"mentora/internal/httputil"
)

// FeedbackHandler handles feedback HTTP requests
type FeedbackHandler struct {
	feedback repositories.FeedbackRepository
	logger   *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback repositories.FeedbackRepository, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		logger:   logger,
	}
}

// CreateFeedbackRequest is the body for POST /api/feedback.
type CreateFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Validate implements request validation
func (r CreateFeedbackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Comment, validation.Length(0, 5000)),
	)
}

// Create stores a feedback record.
// POST /api/feedback
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req CreateFeedbackRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	fb := &models.Feedback{
		ID:        uuid.New().String(),
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.feedback.Create(r.Context(), fb); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, fb)
}

// List returns the user's feedback records.
// GET /api/feedback
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	records, err := h.feedback.ListByUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, records)
}
