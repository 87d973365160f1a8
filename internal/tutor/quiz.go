package tutor

import (
	"context"
	"encoding/json"
	"fmt"

	"mentora/internal/domain/models"
)

// QuizRequest asks for a generated quiz on a topic.
type QuizRequest struct {
	Topic         string
	QuestionCount int
	Prefs         models.Preferences
}

// quizSchema constrains the structured output to the Quiz shape.
var quizSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"title": map[string]interface{}{"type": "STRING"},
		"questions": map[string]interface{}{
			"type": "ARRAY",
			"items": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{"type": "STRING"},
					"options": map[string]interface{}{
						"type":  "ARRAY",
						"items": map[string]interface{}{"type": "STRING"},
					},
					"correctIndex": map[string]interface{}{"type": "INTEGER"},
					"explanation":  map[string]interface{}{"type": "STRING"},
				},
				"required": []string{"prompt", "options", "correctIndex", "explanation"},
			},
		},
	},
	"required": []string{"title", "questions"},
}

// GenerateQuiz requests a schema-constrained quiz and decodes it. A payload
// that fails to decode is a malformed-output failure: surfaced as a
// GenerationError with the localized technical-error message, never retried.
func (o *Orchestrator) GenerateQuiz(ctx context.Context, req *QuizRequest) (*models.Quiz, error) {
	lang := req.Prefs.Language

	if o.probe != nil && !o.probe.Online(ctx) {
		return nil, newGenerationError(FailureOffline, lang, nil)
	}

	count := req.QuestionCount
	if count <= 0 {
		count = 5
	}

	profile := o.profiles.Select(req.Prefs.Level, req.Prefs.Depth, models.ModeStepByStep)
	genReq := o.buildGenerateRequest(&Request{
		Prompt: fmt.Sprintf("Create a quiz of exactly %d multiple-choice questions on the topic: %s. Each question has 4 options.", count, req.Topic),
		Prefs:  req.Prefs,
	}, profile)
	genReq.ResponseSchema = quizSchema
	// Structured output and search grounding are mutually exclusive.
	genReq.GroundWithSearch = false

	provider, err := o.registry.ForModel(profile.Model)
	if err != nil {
		return nil, newGenerationError(FailureGeneric, lang, err)
	}

	var text string
	err = o.withRetry(ctx, func() error {
		resp, callErr := provider.GenerateResponse(ctx, genReq)
		if callErr != nil {
			return callErr
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return nil, newGenerationError(o.classify(err), lang, err)
	}

	var quiz models.Quiz
	if err := json.Unmarshal([]byte(text), &quiz); err != nil {
		return nil, newGenerationError(FailureMalformed, lang, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, newGenerationError(FailureMalformed, lang, fmt.Errorf("quiz contained no questions"))
	}
	for i, q := range quiz.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, newGenerationError(FailureMalformed, lang, fmt.Errorf("question %d has out-of-range correct index", i))
		}
	}

	return &quiz, nil
}
