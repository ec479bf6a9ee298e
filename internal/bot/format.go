package bot

import (
	"fmt"
	"strings"

	"github.com/studtest/quizbot/internal/models"
	"github.com/studtest/quizbot/internal/utils"
)

// FormatQuestion renders one question as a Telegram message, including
// the expected answer format so students type something parseable.
func FormatQuestion(index, total int, q models.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d/%d\n\n%s", index+1, total, q.Text)

	switch q.Type {
	case models.QuestionSingle:
		if len(q.Options) > 0 {
			b.WriteString("\n")
			for i, opt := range q.Options {
				fmt.Fprintf(&b, "\n%s) %s", lowerLetter(i), opt)
			}
		}
		b.WriteString("\n\nReply with the option letter, e.g. a")
	case models.QuestionMatching:
		b.WriteString("\n\n")
		for i, left := range q.Left {
			fmt.Fprintf(&b, "%s) %s\n", letter(i), left)
		}
		b.WriteString("\n")
		for i, right := range q.Right {
			fmt.Fprintf(&b, "%d. %s\n", i+1, right)
		}
		b.WriteString("\nReply with pairs like: A-2 B-1 C-3")
	case models.QuestionTFList:
		b.WriteString("\n\n")
		for i, item := range q.Items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
		b.WriteString("\nReply True/False for each item, e.g. TFT or T,F,T")
	case models.QuestionOrdering:
		b.WriteString("\n\n")
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "%s) %s\n", lowerLetter(i), opt)
		}
		b.WriteString("\nReply with the letters in the right order, e.g. b, a, c")
	default:
		b.WriteString("\n\nReply with your answer in free form.")
	}

	return b.String()
}

// FormatSummary is the closing message after the last answer, before
// the per-question report.
func FormatSummary(test models.Test, res models.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test %q finished!\n", test.Title)
	fmt.Fprintf(&b, "Auto-graded score: %s out of %s.",
		utils.FormatScore(res.Score), utils.FormatScore(res.MaxScore))
	if res.ManualNeeded {
		b.WriteString("\nSome answers need a teacher's review; your final score may change.")
	}
	return b.String()
}

func letter(i int) string {
	return string(rune('A' + i))
}

// lowerLetter labels options the way students answer them: grading
// compares lowercase letters, so the prompt shows lowercase too.
func lowerLetter(i int) string {
	return string(rune('a' + i))
}
