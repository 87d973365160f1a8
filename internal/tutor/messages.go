package tutor

import (
	"mentora/internal/domain/models"
)

// FailureKind classifies a generation failure for user-facing messaging.
type FailureKind int

const (
	// FailureGeneric is the catch-all for network and unknown errors.
	FailureGeneric FailureKind = iota

	// FailureTransient covers overload/unavailability that persisted through
	// all retries.
	FailureTransient

	// FailureRateLimited covers persistent rate limiting.
	FailureRateLimited

	// FailureAuth covers invalid or missing API credentials.
	FailureAuth

	// FailureOffline is the pre-request connectivity short circuit.
	FailureOffline

	// FailureMalformed covers structured output that failed to decode.
	FailureMalformed
)

var failureMessages = map[FailureKind]map[models.Language]string{
	FailureGeneric: {
		models.LanguageEN: "A technical error occurred. Please try again.",
		models.LanguageFR: "Une erreur technique s'est produite. Veuillez réessayer.",
	},
	FailureTransient: {
		models.LanguageEN: "The tutoring service is busy right now. We retried several times without success. Please try again in a moment.",
		models.LanguageFR: "Le service de tutorat est saturé pour le moment. Plusieurs tentatives ont échoué. Veuillez réessayer dans un instant.",
	},
	FailureRateLimited: {
		models.LanguageEN: "Too many requests in a short time. Please wait a moment before asking again.",
		models.LanguageFR: "Trop de demandes en peu de temps. Veuillez patienter un instant avant de redemander.",
	},
	FailureAuth: {
		models.LanguageEN: "The tutoring service could not authenticate with its provider. Please check the API key configuration.",
		models.LanguageFR: "Le service de tutorat n'a pas pu s'authentifier auprès de son fournisseur. Veuillez vérifier la configuration de la clé API.",
	},
	FailureOffline: {
		models.LanguageEN: "You appear to be offline. Check your connection and try again.",
		models.LanguageFR: "Vous semblez être hors ligne. Vérifiez votre connexion et réessayez.",
	},
	FailureMalformed: {
		models.LanguageEN: "The generated content could not be read. Please try again.",
		models.LanguageFR: "Le contenu généré n'a pas pu être lu. Veuillez réessayer.",
	},
}

// FailureMessage returns the localized user-facing message for a failure.
func FailureMessage(kind FailureKind, lang models.Language) string {
	byLang, ok := failureMessages[kind]
	if !ok {
		byLang = failureMessages[FailureGeneric]
	}
	return byLang[normalizeLanguage(lang)]
}

// GenerationError is a classified failure carrying its localized message.
// It is what the auxiliary operations (quiz, notes) return instead of raw
// provider errors.
type GenerationError struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Cause }

func newGenerationError(kind FailureKind, lang models.Language, cause error) *GenerationError {
	return &GenerationError{
		Kind:    kind,
		Message: FailureMessage(kind, lang),
		Cause:   cause,
	}
}
