package bot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studtest/quizbot/internal/models"
)

func TestFormatQuestion(t *testing.T) {
	t.Run("single labels options with letters", func(t *testing.T) {
		msg := FormatQuestion(0, 4, models.Question{
			ID:      "q1",
			Type:    models.QuestionSingle,
			Text:    "What is the powerhouse of the cell?",
			Options: []string{"nucleus", "mitochondrion"},
		})
		assert.Contains(t, msg, "Question 1/4")
		assert.Contains(t, msg, "a) nucleus")
		assert.Contains(t, msg, "b) mitochondrion")
		assert.Contains(t, msg, "option letter")
	})

	t.Run("matching shows both columns and the pair format", func(t *testing.T) {
		msg := FormatQuestion(1, 4, models.Question{
			ID:    "q2",
			Type:  models.QuestionMatching,
			Text:  "Match organ to function",
			Left:  []string{"heart", "lung"},
			Right: []string{"gas exchange", "pumping blood"},
		})
		assert.Contains(t, msg, "A) heart")
		assert.Contains(t, msg, "B) lung")
		assert.Contains(t, msg, "1. gas exchange")
		assert.Contains(t, msg, "A-2 B-1")
	})

	t.Run("tf list numbers the statements", func(t *testing.T) {
		msg := FormatQuestion(2, 4, models.Question{
			ID:    "q3",
			Type:  models.QuestionTFList,
			Text:  "True or false?",
			Items: []string{"DNA is double-stranded", "RNA is double-stranded"},
		})
		assert.Contains(t, msg, "1. DNA is double-stranded")
		assert.Contains(t, msg, "True/False")
	})

	t.Run("ordering labels options and asks for letters in order", func(t *testing.T) {
		msg := FormatQuestion(3, 4, models.Question{
			ID:      "q4",
			Type:    models.QuestionOrdering,
			Text:    "Order the phases",
			Options: []string{"anaphase", "prophase"},
		})
		assert.Contains(t, msg, "a) anaphase")
		assert.Contains(t, msg, "b) prophase")
		assert.Contains(t, msg, "letters in the right order")
	})

	t.Run("free text is open form", func(t *testing.T) {
		msg := FormatQuestion(0, 1, models.Question{
			ID:   "q5",
			Type: models.QuestionFreeText,
			Text: "Explain osmosis",
		})
		assert.Contains(t, msg, "free form")
	})
}

func TestFormatSummary(t *testing.T) {
	test := models.Test{
		ID:    "bio1",
		Title: "Biology Basics",
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionSingle, Text: "x", Answer: json.RawMessage(`"a"`)},
		},
	}

	t.Run("plain score", func(t *testing.T) {
		msg := FormatSummary(test, models.Result{Score: 7.5, MaxScore: 10})
		assert.Contains(t, msg, `"Biology Basics"`)
		assert.Contains(t, msg, "7.5 out of 10")
		assert.NotContains(t, msg, "review")
	})

	t.Run("manual review note", func(t *testing.T) {
		msg := FormatSummary(test, models.Result{Score: 7.5, MaxScore: 10, ManualNeeded: true})
		assert.Contains(t, msg, "teacher's review")
	})
}
