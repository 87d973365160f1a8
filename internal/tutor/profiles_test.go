package tutor

import (
	"testing"

	"mentora/internal/domain/models"
)

func TestLoadProfilesTotal(t *testing.T) {
	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	levels := []models.Level{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced}
	depths := []models.Depth{models.DepthFast, models.DepthDeep}
	modes := []models.Mode{models.ModeStepByStep, models.ModeExamFormal, models.ModeAnswerOnly}

	for _, level := range levels {
		for _, depth := range depths {
			for _, mode := range modes {
				p := profiles.Select(level, depth, mode)
				if p.Model == "" {
					t.Errorf("Select(%s, %s, %s) returned empty profile", level, depth, mode)
				}
				if p.MaxOutputTokens <= 0 {
					t.Errorf("Select(%s, %s, %s) has no output budget", level, depth, mode)
				}
			}
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	a := profiles.Select(models.LevelAdvanced, models.DepthDeep, models.ModeStepByStep)
	b := profiles.Select(models.LevelAdvanced, models.DepthDeep, models.ModeStepByStep)
	if a != b {
		t.Errorf("same inputs produced different profiles: %+v vs %+v", a, b)
	}
}

func TestSelectAnswerOnlyOverride(t *testing.T) {
	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	levels := []models.Level{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced}
	depths := []models.Depth{models.DepthFast, models.DepthDeep}

	for _, level := range levels {
		for _, depth := range depths {
			p := profiles.Select(level, depth, models.ModeAnswerOnly)
			if p.ThinkingBudget != 0 {
				t.Errorf("answer-only at (%s, %s) has thinking budget %d, want 0", level, depth, p.ThinkingBudget)
			}
			if p.Model != "gemini-2.5-flash-lite" {
				t.Errorf("answer-only at (%s, %s) selected %s, want fastest model", level, depth, p.Model)
			}
		}
	}
}

func TestSelectDepthEscalatesCapability(t *testing.T) {
	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	fast := profiles.Select(models.LevelAdvanced, models.DepthFast, models.ModeStepByStep)
	deep := profiles.Select(models.LevelAdvanced, models.DepthDeep, models.ModeStepByStep)
	if deep.ThinkingBudget <= fast.ThinkingBudget {
		t.Errorf("deep budget %d not greater than fast budget %d", deep.ThinkingBudget, fast.ThinkingBudget)
	}
}

func TestSelectNormalizesUnknownInputs(t *testing.T) {
	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	want := profiles.Select(models.LevelIntermediate, models.DepthFast, models.ModeStepByStep)
	got := profiles.Select(models.Level("wizard"), models.Depth("abyssal"), models.ModeStepByStep)
	if got != want {
		t.Errorf("unknown inputs = %+v, want intermediate/fast profile %+v", got, want)
	}
}

func TestParseProfilesRejectsIncompleteTable(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing pair",
			yaml: `
profiles:
  - level: beginner
    depth: fast
    model: m1
answer_only:
  model: m0
`,
		},
		{
			name: "missing answer_only",
			yaml: `
profiles:
  - {level: beginner, depth: fast, model: m}
  - {level: beginner, depth: deep, model: m}
  - {level: intermediate, depth: fast, model: m}
  - {level: intermediate, depth: deep, model: m}
  - {level: advanced, depth: fast, model: m}
  - {level: advanced, depth: deep, model: m}
`,
		},
		{
			name: "duplicate row",
			yaml: `
profiles:
  - {level: beginner, depth: fast, model: m}
  - {level: beginner, depth: fast, model: m2}
answer_only:
  model: m0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseProfiles([]byte(tt.yaml)); err == nil {
				t.Errorf("parseProfiles() accepted invalid table")
			}
		})
	}
}
