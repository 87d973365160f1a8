package tutor

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"mentora/internal/domain/models"
)

//go:embed profiles.yaml
var profilesYAML []byte

// ModelProfile is one row of the model/parameter selection table.
type ModelProfile struct {
	Model           string  `yaml:"model"`
	ThinkingBudget  int     `yaml:"thinking_budget"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

type profileRow struct {
	Level        models.Level `yaml:"level"`
	Depth        models.Depth `yaml:"depth"`
	ModelProfile `yaml:",inline"`
}

type profileTable struct {
	Profiles   []profileRow `yaml:"profiles"`
	AnswerOnly ModelProfile `yaml:"answer_only"`
}

type profileKey struct {
	level models.Level
	depth models.Depth
}

// Profiles is the deterministic (level, depth, mode) → profile mapping. The
// table is total: every combination resolves to exactly one profile, and
// answer-only mode overrides all of them.
type Profiles struct {
	byKey      map[profileKey]ModelProfile
	answerOnly ModelProfile
}

// LoadProfiles parses the embedded profile table and verifies totality over
// all level/depth pairs.
func LoadProfiles() (*Profiles, error) {
	return parseProfiles(profilesYAML)
}

func parseProfiles(raw []byte) (*Profiles, error) {
	var table profileTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse profile table: %w", err)
	}

	p := &Profiles{
		byKey:      make(map[profileKey]ModelProfile, len(table.Profiles)),
		answerOnly: table.AnswerOnly,
	}
	for _, row := range table.Profiles {
		key := profileKey{level: row.Level, depth: row.Depth}
		if _, dup := p.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate profile for level=%s depth=%s", row.Level, row.Depth)
		}
		if row.Model == "" {
			return nil, fmt.Errorf("profile for level=%s depth=%s has no model", row.Level, row.Depth)
		}
		p.byKey[key] = row.ModelProfile
	}

	// Totality check: the selection must never fall through at runtime.
	for _, level := range []models.Level{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced} {
		for _, depth := range []models.Depth{models.DepthFast, models.DepthDeep} {
			if _, ok := p.byKey[profileKey{level: level, depth: depth}]; !ok {
				return nil, fmt.Errorf("profile table missing level=%s depth=%s", level, depth)
			}
		}
	}
	if table.AnswerOnly.Model == "" {
		return nil, fmt.Errorf("profile table missing answer_only override")
	}

	return p, nil
}

// Select returns the profile for the given inputs. Answer-only mode forces
// the fastest model and a zero thinking budget regardless of level and depth.
// Unknown levels and depths normalize to intermediate/fast before lookup, so
// the mapping stays total over arbitrary stored preferences.
func (p *Profiles) Select(level models.Level, depth models.Depth, mode models.Mode) ModelProfile {
	if mode == models.ModeAnswerOnly {
		return p.answerOnly
	}

	switch level {
	case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
	default:
		level = models.LevelIntermediate
	}
	switch depth {
	case models.DepthFast, models.DepthDeep:
	default:
		depth = models.DepthFast
	}

	return p.byKey[profileKey{level: level, depth: depth}]
}
