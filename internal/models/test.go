package models

import (
	"encoding/json"
	"strings"
)

type QuestionType string

const (
	QuestionSingle          QuestionType = "single"
	QuestionMatching        QuestionType = "matching"
	QuestionTFList          QuestionType = "tf_list"
	QuestionOrdering        QuestionType = "ordering"
	QuestionFreeText        QuestionType = "free_text"
	QuestionFreeTextExplain QuestionType = "free_text_explain"
)

// IsFreeText reports whether the type belongs to the free-text family,
// which is auto-scored only as an estimate and requires manual review.
func (t QuestionType) IsFreeText() bool {
	return strings.HasPrefix(string(t), "free_text")
}

// Test is a loaded test definition. Immutable after loading.
type Test struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// Question carries the shared fields plus the type-specific ones. The
// answer key is kept as raw JSON because its shape depends on the type:
// a letter for single, a letter-to-index map for matching, and letter or
// T/F sequences for ordering and tf_list.
type Question struct {
	ID       string          `json:"id" validate:"required"`
	Type     QuestionType    `json:"type" validate:"required,question_type"`
	Text     string          `json:"text" validate:"required"`
	Options  []string        `json:"options,omitempty"`
	Left     []string        `json:"left,omitempty"`
	Right    []string        `json:"right,omitempty"`
	Items    []string        `json:"items,omitempty"`
	Keywords []string        `json:"keywords,omitempty"`
	Answer   json.RawMessage `json:"answer,omitempty"`
	Points   *float64        `json:"points,omitempty" validate:"omitempty,gt=0"`
}

// AnswerLetter decodes the answer key as a single option letter.
// Returns "" when the key is absent or has a different shape.
func (q Question) AnswerLetter() string {
	var s string
	if err := json.Unmarshal(q.Answer, &s); err != nil {
		return ""
	}
	return s
}

// AnswerPairs decodes the answer key as a letter-to-index mapping with
// lowercased keys. Returns an empty map when the key is absent or malformed.
func (q Question) AnswerPairs() map[string]int {
	pairs := map[string]int{}
	var raw map[string]int
	if err := json.Unmarshal(q.Answer, &raw); err != nil {
		return pairs
	}
	for k, v := range raw {
		pairs[strings.ToLower(k)] = v
	}
	return pairs
}

// AnswerList decodes the answer key as an ordered sequence of strings.
// Returns nil when the key is absent or has a different shape.
func (q Question) AnswerList() []string {
	var list []string
	if err := json.Unmarshal(q.Answer, &list); err != nil {
		return nil
	}
	return list
}

// MaxPoints derives the question's maximum point value: an explicit
// points override wins, otherwise the type default applies.
func (q Question) MaxPoints() float64 {
	if q.Points != nil {
		return *q.Points
	}
	switch q.Type {
	case QuestionSingle:
		return 1
	case QuestionMatching:
		return float64(len(q.AnswerPairs()))
	case QuestionTFList:
		return float64(len(q.Items))
	case QuestionOrdering:
		return float64(len(q.Options))
	}
	if q.Type.IsFreeText() {
		return 2
	}
	return 1
}
