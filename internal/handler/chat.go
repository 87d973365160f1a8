package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mentora/internal/domain/models"
	"mentora/internal/domain/repositories"
	"mentora/internal/handler/sse"
	"mentora/internal/httputil"
	"mentora/internal/tutor"
)

// ChatHandler streams tutor replies over SSE and persists the turn history.
type ChatHandler struct {
	orchestrator  *tutor.Orchestrator
	conversations repositories.ConversationRepository
	preferences   repositories.PreferencesRepository
	guard         *tutor.InflightGuard
	sseConfig     *sse.Config
	logger        *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	orchestrator *tutor.Orchestrator,
	conversations repositories.ConversationRepository,
	preferences repositories.PreferencesRepository,
	guard *tutor.InflightGuard,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		orchestrator:  orchestrator,
		conversations: conversations,
		preferences:   preferences,
		guard:         guard,
		sseConfig:     sseConfig,
		logger:        logger,
	}
}

// SendMessageRequest is the body for POST /api/conversations/{id}/messages.
type SendMessageRequest struct {
	Text       string             `json:"text"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
	Image      *models.Attachment `json:"image,omitempty"`
}

// Validate implements request validation
func (r SendMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text,
			validation.Required.When(r.Attachment == nil).Error("text or attachment is required"),
			validation.Length(0, 32000),
		),
	)
}

// deltaEvent is the payload of each SSE delta event. Text is cumulative:
// clients replace, never append.
type deltaEvent struct {
	Text string `json:"text"`
}

// lockedEventWriter serializes SSE writes between the streaming callback and
// the keep-alive goroutine.
type lockedEventWriter struct {
	mu sync.Mutex
	w  *sse.EventWriter
}

func (l *lockedEventWriter) WriteEvent(event string, payload interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteEvent(event, payload)
}

func (l *lockedEventWriter) WriteKeepAlive() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteKeepAlive()
}

// SendMessage appends a user turn and streams the tutor's reply.
// POST /api/conversations/{id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	conversationID := r.PathValue("id")

	if _, err := parseUUID(conversationID); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID format")
		return
	}

	var req SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// One in-flight generation per conversation; a second request is
	// rejected, not queued.
	if err := h.guard.Acquire(conversationID); err != nil {
		handleError(w, err)
		return
	}
	defer h.guard.Release(conversationID)

	prefs := loadPreferences(r, h.preferences, h.logger)

	conv, err := h.loadOrCreateConversation(r, conversationID, userID, req.Text)
	if err != nil {
		handleError(w, err)
		return
	}

	now := time.Now().UTC()
	userTurn := models.Turn{
		Role:       models.RoleUser,
		Text:       req.Text,
		Timestamp:  now,
		Attachment: req.Attachment,
		Image:      req.Image,
	}

	writer, err := sse.NewEventWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}
	locked := &lockedEventWriter{w: writer}

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAliveStopped := keepAlive.Start(locked, h.logger)
	defer func() {
		keepAlive.Stop()
		<-keepAliveStopped
	}()

	result := h.orchestrator.Respond(r.Context(), &tutor.Request{
		Prompt:     req.Text,
		History:    conv.Turns,
		Prefs:      prefs,
		Attachment: req.Attachment,
		Image:      req.Image,
	}, func(cumulative string) {
		if err := locked.WriteEvent("delta", deltaEvent{Text: cumulative}); err != nil {
			h.logger.Warn("delta write failed", "conversation_id", conversationID, "error", err)
		}
	})

	modelTurn := models.Turn{
		Role:      models.RoleModel,
		Text:      result.Text,
		Timestamp: time.Now().UTC(),
		Image:     result.Image,
		Citations: result.Citations,
		IsError:   result.IsError,
	}

	conv.Turns = append(conv.Turns, userTurn, modelTurn)
	conv.UpdatedAt = time.Now().UTC()
	if err := h.conversations.Upsert(r.Context(), conv); err != nil {
		// The reply already streamed; losing the save is logged, not fatal.
		h.logger.Error("failed to persist conversation", "conversation_id", conversationID, "error", err)
	}

	if err := locked.WriteEvent("done", result); err != nil {
		h.logger.Warn("done write failed", "conversation_id", conversationID, "error", err)
	}
}

// loadOrCreateConversation fetches the conversation or starts an empty one
// under the given id. New conversations are titled from the first prompt.
func (h *ChatHandler) loadOrCreateConversation(r *http.Request, id, userID, prompt string) (*models.Conversation, error) {
	conv, err := h.conversations.GetByID(r.Context(), id, userID)
	if err == nil {
		return conv, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	return &models.Conversation{
		ID:        id,
		UserID:    userID,
		Title:     titleFromPrompt(prompt),
		Turns:     []models.Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// titleFromPrompt derives a short conversation title from the opening prompt.
func titleFromPrompt(prompt string) string {
	const maxTitle = 60
	if prompt == "" {
		return "New conversation"
	}
	runes := []rune(prompt)
	if len(runes) <= maxTitle {
		return prompt
	}
	return string(runes[:maxTitle])
}
