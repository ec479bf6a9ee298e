package grading

import (
	"math"
	"strings"

	"github.com/studtest/quizbot/internal/models"
)

// Grade scores a raw answer map against a test definition. Questions
// are visited in their defined order; an absent answer counts as an
// empty string and an unrecognized type scores zero. It never fails:
// grading the same inputs twice yields identical results.
func Grade(test models.Test, answers map[string]string) models.Result {
	res := models.Result{
		PerQuestion: make(map[string]float64, len(test.Questions)),
		Details:     make(map[string]models.Detail, len(test.Questions)),
	}

	for _, q := range test.Questions {
		pts := q.MaxPoints()
		res.MaxScore += pts

		det := gradeQuestion(q, answers[q.ID], pts)
		if q.Type.IsFreeText() {
			res.ManualNeeded = true
		}

		res.PerQuestion[q.ID] = det.Score
		res.Details[q.ID] = det
		res.Score += det.Score
		res.AutoScore += det.Score
	}

	res.Score = round2(res.Score)
	res.MaxScore = round2(res.MaxScore)
	res.AutoScore = round2(res.AutoScore)
	return res
}

func gradeQuestion(q models.Question, raw string, pts float64) models.Detail {
	switch q.Type {
	case models.QuestionSingle:
		return gradeSingle(q, raw, pts)
	case models.QuestionMatching:
		return gradeMatching(q, raw, pts)
	case models.QuestionTFList:
		return gradeTFList(q, raw, pts)
	case models.QuestionOrdering:
		return gradeOrdering(q, raw, pts)
	}
	if q.Type.IsFreeText() {
		return gradeFreeText(q, raw, pts)
	}
	// Unrecognized type: keep the raw value for audit, score zero.
	return models.Detail{Type: q.Type, Student: raw}
}

// gradeSingle awards full credit iff the normalized letters match.
func gradeSingle(q models.Question, raw string, pts float64) models.Detail {
	correct := NormalizeChoice(q.AnswerLetter())
	got := NormalizeChoice(raw)
	det := models.Detail{Type: q.Type, Student: got, Correct: correct}
	if got == correct {
		det.Score = round2(pts)
	}
	return det
}

// gradeMatching awards pts/N per expected pair the student reproduced.
// Extra or wrong student pairs neither add nor subtract.
func gradeMatching(q models.Question, raw string, pts float64) models.Detail {
	correct := q.AnswerPairs()
	student := ParseMatching(raw)
	matched := 0
	for letter, want := range correct {
		if got, ok := student[letter]; ok && got == want {
			matched++
		}
	}
	return models.Detail{
		Type:         q.Type,
		StudentPairs: student,
		CorrectPairs: correct,
		Matched:      matched,
		Total:        len(correct),
		Score:        partialScore(matched, len(correct), pts),
	}
}

func gradeTFList(q models.Question, raw string, pts float64) models.Detail {
	correct := q.AnswerList()
	for i := range correct {
		correct[i] = strings.ToUpper(correct[i])
	}
	student := ParseTFList(raw)
	det := models.Detail{
		Type:       q.Type,
		StudentSeq: student,
		CorrectSeq: correct,
		Total:      len(correct),
	}
	det.Matched = positionalMatches(student, correct)
	det.Score = partialScore(det.Matched, len(correct), pts)
	return det
}

// gradeOrdering runs the same positional comparison as gradeTFList,
// over letter sequences.
func gradeOrdering(q models.Question, raw string, pts float64) models.Detail {
	correct := q.AnswerList()
	for i := range correct {
		correct[i] = strings.ToLower(correct[i])
	}
	student := ParseOrdering(raw)
	det := models.Detail{
		Type:       q.Type,
		StudentSeq: student,
		CorrectSeq: correct,
		Total:      len(correct),
	}
	det.Matched = positionalMatches(student, correct)
	det.Score = partialScore(det.Matched, len(correct), pts)
	return det
}

// gradeFreeText estimates a score by case-insensitive keyword search.
// Without keywords, or with an empty answer, the estimate is zero; the
// authoritative score comes from the teacher outside this engine.
func gradeFreeText(q models.Question, raw string, pts float64) models.Detail {
	det := models.Detail{
		Type:          q.Type,
		Student:       raw,
		KeywordsTotal: len(q.Keywords),
	}
	if strings.TrimSpace(raw) == "" || len(q.Keywords) == 0 {
		return det
	}
	low := strings.ToLower(raw)
	for _, kw := range q.Keywords {
		if strings.Contains(low, strings.ToLower(kw)) {
			det.KeywordsFound++
		}
	}
	ratio := float64(det.KeywordsFound) / float64(len(q.Keywords))
	det.Score = round2(math.Min(pts, pts*ratio))
	return det
}

// positionalMatches counts positions where the student sequence equals
// the expected one; positions past the end of the student sequence
// count as wrong.
func positionalMatches(student, correct []string) int {
	matched := 0
	for i, want := range correct {
		if i < len(student) && student[i] == want {
			matched++
		}
	}
	return matched
}

// partialScore spreads pts evenly over total sub-parts. The divisor is
// floored at 1 so an empty answer key scores zero instead of dividing
// by zero.
func partialScore(matched, total int, pts float64) float64 {
	if total < 1 {
		total = 1
	}
	return round2(float64(matched) * (pts / float64(total)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
