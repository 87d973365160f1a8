package tutor

import (
	"context"
	"encoding/base64"
	"fmt"

	"mentora/internal/domain/models"
)

// NotesRequest asks for a synthesized study-note document from one or more
// attachments. Raw pasted text is accepted and treated as a pseudo-attachment.
type NotesRequest struct {
	Attachments []models.Attachment
	PastedText  string
	Prefs       models.Preferences
}

var notesPrompts = map[models.Language]string{
	models.LanguageEN: `Synthesize the attached material into a single set of revision notes: a short overview, the key definitions and formulas (in LaTeX), and a bullet summary per section. Return one formatted document.`,
	models.LanguageFR: `Synthétise le contenu joint en une seule fiche de révision : un bref aperçu, les définitions et formules clés (en LaTeX), et un résumé à puces par section. Retourne un seul document formaté.`,
}

// SynthesizeNotes returns a single formatted study-note document. Shares the
// transient-retry policy; no extra retries beyond it.
func (o *Orchestrator) SynthesizeNotes(ctx context.Context, req *NotesRequest) (string, error) {
	lang := normalizeLanguage(req.Prefs.Language)

	if o.probe != nil && !o.probe.Online(ctx) {
		return "", newGenerationError(FailureOffline, lang, nil)
	}

	attachments := req.Attachments
	if req.PastedText != "" {
		attachments = append(attachments, models.Attachment{
			Data:     base64.StdEncoding.EncodeToString([]byte(req.PastedText)),
			MimeType: "text/plain",
			Name:     "pasted-text.txt",
		})
	}
	if len(attachments) == 0 {
		return "", newGenerationError(FailureGeneric, lang, fmt.Errorf("no source material provided"))
	}

	profile := o.profiles.Select(req.Prefs.Level, req.Prefs.Depth, models.ModeStepByStep)

	// One user message per attachment, prompt on the last.
	history := make([]models.Turn, 0, len(attachments)-1)
	for i := 0; i < len(attachments)-1; i++ {
		a := attachments[i]
		history = append(history, models.Turn{Role: models.RoleUser, Attachment: &a})
	}
	last := attachments[len(attachments)-1]

	genReq := o.buildGenerateRequest(&Request{
		Prompt:     notesPrompts[lang],
		History:    history,
		Prefs:      req.Prefs,
		Attachment: &last,
	}, profile)
	genReq.GroundWithSearch = false

	provider, err := o.registry.ForModel(profile.Model)
	if err != nil {
		return "", newGenerationError(FailureGeneric, lang, err)
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
		return "", newGenerationError(o.classify(err), lang, err)
	}

	return text, nil
}
