package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mentora/internal/domain/repositories"
	"mentora/internal/httputil"
	"mentora/internal/tutor"
)

// QuizHandler handles quiz generation HTTP requests
type QuizHandler struct {
	orchestrator *tutor.Orchestrator
	preferences  repositories.PreferencesRepository
	logger       *slog.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(orchestrator *tutor.Orchestrator, preferences repositories.PreferencesRepository, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{
		orchestrator: orchestrator,
		preferences:  preferences,
		logger:       logger,
	}
}

// GenerateQuizRequest is the body for POST /api/quizzes.
type GenerateQuizRequest struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"questionCount"`
}

// Validate implements request validation
func (r GenerateQuizRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Topic, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.QuestionCount, validation.Min(0), validation.Max(20)),
	)
}

// Generate creates a quiz on the requested topic.
// POST /api/quizzes
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuizRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := loadPreferences(r, h.preferences, h.logger)

	quiz, err := h.orchestrator.GenerateQuiz(r.Context(), &tutor.QuizRequest{
		Topic:         req.Topic,
		QuestionCount: req.QuestionCount,
		Prefs:         prefs,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, quiz)
}
