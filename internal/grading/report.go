package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/studtest/quizbot/internal/models"
)

// BuildReport renders the per-question breakdown consumed by the chat
// layer. For every question it shows what the student answered, what
// was expected and the awarded versus possible points. Pure formatting;
// no scoring of its own.
func BuildReport(test models.Test, res models.Result) string {
	blocks := make([]string, 0, len(test.Questions))
	for _, q := range test.Questions {
		det := res.Details[q.ID]
		pts := fmtNum(q.MaxPoints())
		lines := []string{"Q: " + q.Text}

		switch q.Type {
		case models.QuestionSingle:
			mark := "❌"
			if det.Student == det.Correct {
				mark = "✅"
			}
			lines = append(lines, fmt.Sprintf("   Your answer: %s | Correct: %s %s (+%s/%s)",
				orEmpty(det.Student), det.Correct, mark, fmtNum(det.Score), pts))

		case models.QuestionMatching:
			lines = append(lines,
				fmt.Sprintf("   Pairs matched: %d/%d (+%s/%s)", det.Matched, det.Total, fmtNum(det.Score), pts),
				"   Your pairs: "+fmtPairs(det.StudentPairs),
				"   Correct pairs: "+fmtPairs(det.CorrectPairs))

		case models.QuestionTFList:
			lines = append(lines,
				fmt.Sprintf("   Correct positions: %d/%d (+%s/%s)", det.Matched, det.Total, fmtNum(det.Score), pts),
				"   Your answer: "+fmtSeq(det.StudentSeq),
				"   Expected: "+fmtSeq(det.CorrectSeq))

		case models.QuestionOrdering:
			lines = append(lines,
				fmt.Sprintf("   Positions matched: %d/%d (+%s/%s)", det.Matched, det.Total, fmtNum(det.Score), pts),
				"   Correct order: "+fmtSeq(det.CorrectSeq),
				"   Your order: "+fmtSeq(det.StudentSeq))

		default:
			if q.Type.IsFreeText() {
				if det.KeywordsTotal > 0 {
					lines = append(lines, fmt.Sprintf("   Keywords found: %d/%d, auto +%s/%s",
						det.KeywordsFound, det.KeywordsTotal, fmtNum(det.Score), pts))
				} else {
					lines = append(lines, fmt.Sprintf("   Sent to the teacher for manual review. (+0/%s auto)", pts))
				}
				lines = append(lines, "   Your answer: "+orEmpty(det.Student))
			} else {
				lines = append(lines, "   Answer: "+orEmpty(det.Student))
			}
		}

		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtSeq(seq []string) string {
	if len(seq) == 0 {
		return "(empty)"
	}
	return strings.Join(seq, " ")
}

func fmtPairs(pairs map[string]int) string {
	if len(pairs) == 0 {
		return "(empty)"
	}
	letters := make([]string, 0, len(pairs))
	for letter := range pairs {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	parts := make([]string, 0, len(letters))
	for _, letter := range letters {
		parts = append(parts, fmt.Sprintf("%s-%d", letter, pairs[letter]))
	}
	return strings.Join(parts, " ")
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}
