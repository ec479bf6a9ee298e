package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studtest/quizbot/internal/models"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func singleQ(t *testing.T, id, correct string, options ...string) models.Question {
	return models.Question{
		ID: id, Type: models.QuestionSingle, Text: "pick one",
		Options: options, Answer: rawJSON(t, correct),
	}
}

func TestGradeSingle(t *testing.T) {
	test := models.Test{ID: "t1", Title: "Capitals", Questions: []models.Question{
		singleQ(t, "q1", "a", "Paris", "London"),
	}}

	t.Run("correct answer", func(t *testing.T) {
		res := Grade(test, map[string]string{"q1": "a"})
		assert.Equal(t, 1.0, res.Score)
		assert.Equal(t, 1.0, res.MaxScore)
		assert.Equal(t, 1.0, res.PerQuestion["q1"])
		assert.False(t, res.ManualNeeded)
	})

	t.Run("wrong answer", func(t *testing.T) {
		res := Grade(test, map[string]string{"q1": "b"})
		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, 1.0, res.MaxScore)
	})

	t.Run("case and whitespace tolerated", func(t *testing.T) {
		res := Grade(test, map[string]string{"q1": " A "})
		assert.Equal(t, 1.0, res.Score)
	})

	t.Run("missing answer scores zero", func(t *testing.T) {
		res := Grade(test, map[string]string{})
		assert.Equal(t, 0.0, res.Score)
		det, ok := res.Details["q1"]
		require.True(t, ok)
		assert.Equal(t, "", det.Student)
		assert.Equal(t, "a", det.Correct)
	})
}

func TestGradeMatching(t *testing.T) {
	test := models.Test{ID: "t1", Title: "Match", Questions: []models.Question{{
		ID: "q2", Type: models.QuestionMatching, Text: "match them",
		Left:  []string{"one", "two", "three"},
		Right: []string{"r1", "r2", "r3", "r4"},
		Answer: rawJSON(t, map[string]int{"a": 2, "b": 1, "c": 4}),
	}}}

	t.Run("partial credit per pair", func(t *testing.T) {
		// Two of three pairs match; pts defaults to the pair count.
		res := Grade(test, map[string]string{"q2": "a-2 b-3 c-4"})
		assert.Equal(t, 2.0, res.Score)
		assert.Equal(t, 3.0, res.MaxScore)
		det := res.Details["q2"]
		assert.Equal(t, 2, det.Matched)
		assert.Equal(t, 3, det.Total)
	})

	t.Run("extra pairs ignored", func(t *testing.T) {
		res := Grade(test, map[string]string{"q2": "a-2 b-1 c-4 d-9 e-1"})
		assert.Equal(t, 3.0, res.Score)
	})

	t.Run("garbled input degrades to zero", func(t *testing.T) {
		res := Grade(test, map[string]string{"q2": "no idea"})
		assert.Equal(t, 0.0, res.Score)
	})

	t.Run("empty answer key does not divide by zero", func(t *testing.T) {
		empty := models.Test{ID: "t2", Title: "x", Questions: []models.Question{{
			ID: "q", Type: models.QuestionMatching, Text: "x",
			Answer: rawJSON(t, map[string]int{}),
		}}}
		res := Grade(empty, map[string]string{"q": "a-1"})
		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, 0.0, res.MaxScore)
	})
}

func TestGradeTFList(t *testing.T) {
	test := models.Test{ID: "t1", Title: "TF", Questions: []models.Question{{
		ID: "q3", Type: models.QuestionTFList, Text: "true or false",
		Items:  []string{"s1", "s2", "s3"},
		Answer: rawJSON(t, []string{"T", "F", "T"}),
	}}}

	t.Run("positional partial credit", func(t *testing.T) {
		// "TFF" matches positions 0 and 1 only.
		res := Grade(test, map[string]string{"q3": "TFF"})
		assert.Equal(t, 2.0, res.Score)
		assert.Equal(t, 3.0, res.MaxScore)
	})

	t.Run("short answer counts missing positions wrong", func(t *testing.T) {
		res := Grade(test, map[string]string{"q3": "T"})
		assert.Equal(t, 1.0, res.Score)
	})

	t.Run("lowercase answer key is uppercased", func(t *testing.T) {
		lower := models.Test{ID: "t", Title: "x", Questions: []models.Question{{
			ID: "q", Type: models.QuestionTFList, Text: "x",
			Items:  []string{"s1", "s2"},
			Answer: rawJSON(t, []string{"t", "f"}),
		}}}
		res := Grade(lower, map[string]string{"q": "T F"})
		assert.Equal(t, 2.0, res.Score)
	})
}

func TestGradeOrdering(t *testing.T) {
	test := models.Test{ID: "t1", Title: "Order", Questions: []models.Question{{
		ID: "q4", Type: models.QuestionOrdering, Text: "put in order",
		Options: []string{"o1", "o2", "o3", "o4", "o5"},
		Answer:  rawJSON(t, []string{"d", "c", "b", "a", "e"}),
	}}}

	t.Run("full credit across input styles", func(t *testing.T) {
		for _, input := range []string{"d c b a e", "dcbae", "d,c,b,a,e"} {
			res := Grade(test, map[string]string{"q4": input})
			assert.Equal(t, 5.0, res.Score, "input %q", input)
		}
	})

	t.Run("partial order", func(t *testing.T) {
		res := Grade(test, map[string]string{"q4": "d c a b e"})
		assert.Equal(t, 3.0, res.Score)
	})
}

func TestGradeFreeText(t *testing.T) {
	test := models.Test{ID: "t1", Title: "Bio", Questions: []models.Question{{
		ID: "q5", Type: models.QuestionFreeText, Text: "explain",
		Keywords: []string{"mitosis", "cell"},
	}}}

	t.Run("all keywords found gives full points", func(t *testing.T) {
		res := Grade(test, map[string]string{"q5": "the process of mitosis splits the cell"})
		assert.Equal(t, 2.0, res.Score)
		assert.True(t, res.ManualNeeded)
		det := res.Details["q5"]
		assert.Equal(t, 2, det.KeywordsFound)
		assert.Equal(t, 2, det.KeywordsTotal)
	})

	t.Run("half the keywords gives half the points", func(t *testing.T) {
		res := Grade(test, map[string]string{"q5": "something about a cell"})
		assert.Equal(t, 1.0, res.Score)
		assert.True(t, res.ManualNeeded)
	})

	t.Run("manual flag set even with zero match", func(t *testing.T) {
		res := Grade(test, map[string]string{"q5": "no clue"})
		assert.Equal(t, 0.0, res.Score)
		assert.True(t, res.ManualNeeded)
	})

	t.Run("empty answer scores zero", func(t *testing.T) {
		res := Grade(test, map[string]string{"q5": "   "})
		assert.Equal(t, 0.0, res.Score)
		assert.True(t, res.ManualNeeded)
	})

	t.Run("no keywords configured still flags manual", func(t *testing.T) {
		noKw := models.Test{ID: "t", Title: "x", Questions: []models.Question{{
			ID: "q", Type: models.QuestionFreeTextExplain, Text: "essay",
		}}}
		res := Grade(noKw, map[string]string{"q": "a long thoughtful essay"})
		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, 2.0, res.MaxScore) // free_text default
		assert.True(t, res.ManualNeeded)
		assert.Equal(t, 0, res.Details["q"].KeywordsTotal)
	})

	t.Run("explicit points override and cap", func(t *testing.T) {
		pts := 5.0
		capped := models.Test{ID: "t", Title: "x", Questions: []models.Question{{
			ID: "q", Type: models.QuestionFreeText, Text: "x",
			Keywords: []string{"alpha"}, Points: &pts,
		}}}
		res := Grade(capped, map[string]string{"q": "alpha alpha alpha"})
		assert.Equal(t, 5.0, res.Score)
	})
}

func TestGradeUnrecognizedType(t *testing.T) {
	test := models.Test{ID: "t1", Title: "x", Questions: []models.Question{{
		ID: "q9", Type: "essay_upload", Text: "upload it",
	}}}
	res := Grade(test, map[string]string{"q9": "some raw value"})
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 1.0, res.MaxScore)
	assert.False(t, res.ManualNeeded)
	assert.Equal(t, "some raw value", res.Details["q9"].Student)
}

func TestGradeProperties(t *testing.T) {
	pts := 4.0
	test := models.Test{ID: "mix", Title: "Mixed", Questions: []models.Question{
		singleQ(t, "q1", "b", "x", "y"),
		{ID: "q2", Type: models.QuestionMatching, Text: "m",
			Answer: rawJSON(t, map[string]int{"a": 1, "b": 2})},
		{ID: "q3", Type: models.QuestionTFList, Text: "tf",
			Items: []string{"i1", "i2", "i3"}, Answer: rawJSON(t, []string{"T", "T", "F"})},
		{ID: "q4", Type: models.QuestionOrdering, Text: "o",
			Options: []string{"o1", "o2", "o3"}, Answer: rawJSON(t, []string{"c", "a", "b"})},
		{ID: "q5", Type: models.QuestionFreeText, Text: "ft",
			Keywords: []string{"k1", "k2", "k3"}, Points: &pts},
	}}
	answers := map[string]string{
		"q1": "b",
		"q2": "a1 b9",
		"q3": "t f f",
		"q4": "cab",
		"q5": "mentions k1 and k3 only",
	}

	res := Grade(test, answers)

	t.Run("per question scores bounded by max points", func(t *testing.T) {
		for _, q := range test.Questions {
			score := res.PerQuestion[q.ID]
			assert.GreaterOrEqual(t, score, 0.0, q.ID)
			assert.LessOrEqual(t, score, q.MaxPoints(), q.ID)
		}
	})

	t.Run("totals are consistent", func(t *testing.T) {
		var sum, max float64
		for _, q := range test.Questions {
			sum += res.PerQuestion[q.ID]
			max += q.MaxPoints()
		}
		assert.InDelta(t, sum, res.Score, 0.001)
		assert.Equal(t, res.Score, res.AutoScore)
		assert.InDelta(t, max, res.MaxScore, 0.001)
	})

	t.Run("grading is idempotent", func(t *testing.T) {
		again := Grade(test, answers)
		assert.Equal(t, res, again)
	})

	t.Run("manual flag tracks free text presence", func(t *testing.T) {
		assert.True(t, res.ManualNeeded)
		auto := models.Test{ID: "a", Title: "x", Questions: test.Questions[:4]}
		assert.False(t, Grade(auto, answers).ManualNeeded)
	})
}
