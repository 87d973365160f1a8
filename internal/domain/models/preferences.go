package models

import (
	"time"

	"github.com/google/uuid"
)

// Level is the learner's difficulty/audience tier.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Syllabus is the optional curriculum tag used to select canned instruction
// blocks. Closed enumeration: unknown tags map to SyllabusNone, never to a
// silent default syllabus.
type Syllabus string

const (
	SyllabusNone   Syllabus = ""
	SyllabusIGCSE  Syllabus = "igcse"
	SyllabusIB     Syllabus = "ib"
	SyllabusALevel Syllabus = "a_level"
	SyllabusAP     Syllabus = "ap"
)

// ParseSyllabus maps a stored tag onto the closed syllabus set.
func ParseSyllabus(tag string) Syllabus {
	switch Syllabus(tag) {
	case SyllabusIGCSE, SyllabusIB, SyllabusALevel, SyllabusAP:
		return Syllabus(tag)
	default:
		return SyllabusNone
	}
}

// Mode is the tutoring style for a response.
type Mode string

const (
	ModeStepByStep Mode = "step_by_step"
	ModeExamFormal Mode = "exam_formal"
	ModeAnswerOnly Mode = "answer_only"
)

// Language selects one of the two supported locales.
type Language string

const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"
)

// Depth is the reasoning-depth preference. Deep selects a more capable model
// and a larger thinking budget.
type Depth string

const (
	DepthFast Depth = "fast"
	DepthDeep Depth = "deep"
)

// Preferences is the per-user tutoring profile document, stored as a single
// JSONB column keyed by user id.
type Preferences struct {
	DisplayName     string   `json:"display_name,omitempty"`
	AvatarURL       string   `json:"avatar_url,omitempty"`
	Level           Level    `json:"level"`
	Syllabus        Syllabus `json:"syllabus,omitempty"`
	Language        Language `json:"language"`
	Mode            Mode     `json:"mode"`
	Depth           Depth    `json:"depth"`
	FocusAreas      []string `json:"focus_areas,omitempty"`
	GuidedQuestions bool     `json:"guided_questions"`
}

// DefaultPreferences returns the profile applied to users who have never
// saved one.
func DefaultPreferences() Preferences {
	return Preferences{
		Level:           LevelIntermediate,
		Language:        LanguageEN,
		Mode:            ModeStepByStep,
		Depth:           DepthFast,
		GuidedQuestions: true,
	}
}

// UserPreferences is the persisted row wrapping a Preferences document.
type UserPreferences struct {
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Preferences Preferences `json:"preferences" db:"preferences"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
