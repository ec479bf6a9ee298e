package testbank

import (
	"fmt"

	apperrors "github.com/studtest/quizbot/internal/errors"
	"github.com/studtest/quizbot/internal/models"
)

func apperrorsFrom(err error) error {
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// validateQuestions enforces the per-type shape rules that struct tags
// cannot express: each type needs its answer key and supporting lists.
func validateQuestions(test models.Test) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	seen := make(map[string]bool, len(test.Questions))
	add := func(q models.Question, field, msg string) {
		errs = append(errs, *apperrors.NewValidationError(
			fmt.Sprintf("questions[%s].%s", q.ID, field), msg, nil))
	}

	for _, q := range test.Questions {
		if seen[q.ID] {
			add(q, "id", "duplicate question id")
			continue
		}
		seen[q.ID] = true

		switch q.Type {
		case models.QuestionSingle:
			if len(q.Options) == 0 {
				add(q, "options", "single-choice question needs options")
			}
			if q.AnswerLetter() == "" {
				add(q, "answer", "single-choice question needs a correct letter")
			}
		case models.QuestionMatching:
			if len(q.Left) == 0 || len(q.Right) == 0 {
				add(q, "left", "matching question needs left and right items")
			}
			if len(q.AnswerPairs()) == 0 {
				add(q, "answer", "matching question needs a letter-to-index answer map")
			}
		case models.QuestionTFList:
			if len(q.Items) == 0 {
				add(q, "items", "tf_list question needs statement items")
			}
			if got, want := len(q.AnswerList()), len(q.Items); got != want {
				add(q, "answer", fmt.Sprintf("answer length %d does not match %d items", got, want))
			}
		case models.QuestionOrdering:
			if len(q.Options) == 0 {
				add(q, "options", "ordering question needs options")
			}
			if got, want := len(q.AnswerList()), len(q.Options); got != want {
				add(q, "answer", fmt.Sprintf("answer length %d does not match %d options", got, want))
			}
		}
		// free_text variants are valid bare; keywords and points are optional.
	}

	return errs
}
