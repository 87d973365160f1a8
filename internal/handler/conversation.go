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

// ConversationHandler handles conversation persistence HTTP requests.
// Conversations are saved and loaded as whole documents: PUT replaces the
// turn history, GET returns it.
type ConversationHandler struct {
	conversations repositories.ConversationRepository
	logger        *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations repositories.ConversationRepository, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		logger:        logger,
	}
}

// SaveConversationRequest is the body for PUT /api/conversations/{id}.
type SaveConversationRequest struct {
	Title string        `json:"title"`
	Turns []models.Turn `json:"turns"`
}

// Validate implements request validation
func (r SaveConversationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 200)),
		validation.Field(&r.Turns, validation.NotNil),
	)
}

// List returns the user's conversations without turn payloads.
// GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	conversations, err := h.conversations.ListByUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversations)
}

// Get returns one conversation with its full turn history.
// GET /api/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id := r.PathValue("id")

	if _, err := parseUUID(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID format")
		return
	}

	conv, err := h.conversations.GetByID(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}

// Save replaces the stored conversation document.
// PUT /api/conversations/{id}
func (h *ConversationHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id := r.PathValue("id")

	if _, err := parseUUID(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID format")
		return
	}

	var req SaveConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        id,
		UserID:    userID,
		Title:     req.Title,
		Turns:     req.Turns,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if conv.Title == "" && len(req.Turns) > 0 {
		conv.Title = titleFromPrompt(req.Turns[0].Text)
	}

	if err := h.conversations.Upsert(r.Context(), conv); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conv)
}

// Delete removes a conversation.
// DELETE /api/conversations/{id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id := r.PathValue("id")

	if _, err := parseUUID(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID format")
		return
	}

	if err := h.conversations.Delete(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
