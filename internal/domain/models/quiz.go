package models

// QuizQuestion is one multiple-choice item in a generated quiz.
type QuizQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Quiz is a structured generation result: a title plus an ordered question
// list. Produced by schema-constrained output; a payload that fails to decode
// is a malformed-output error, never retried.
type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}
