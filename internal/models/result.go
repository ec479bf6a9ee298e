package models

// Detail is the per-question diagnostic record produced by grading.
// Which fields are populated depends on the question type.
type Detail struct {
	Type QuestionType `json:"type"`

	// single / free_text / unrecognized: what the student supplied
	// (normalized letter for single, raw text otherwise).
	Student string `json:"student,omitempty"`
	// single: the normalized expected letter.
	Correct string `json:"correct,omitempty"`

	// matching
	StudentPairs map[string]int `json:"student_pairs,omitempty"`
	CorrectPairs map[string]int `json:"correct_pairs,omitempty"`

	// tf_list / ordering
	StudentSeq []string `json:"student_seq,omitempty"`
	CorrectSeq []string `json:"correct_seq,omitempty"`

	// matching / tf_list / ordering position counts.
	Matched int `json:"matched,omitempty"`
	Total   int `json:"total,omitempty"`

	// free_text keyword estimate.
	KeywordsFound int `json:"keywords_found,omitempty"`
	KeywordsTotal int `json:"keywords_total,omitempty"`

	Score float64 `json:"score"`
}

// Result is the outcome of grading one (test, answers) pair.
type Result struct {
	Score        float64            `json:"score"`
	MaxScore     float64            `json:"max_score"`
	AutoScore    float64            `json:"auto_score"`
	ManualNeeded bool               `json:"manual_needed"`
	PerQuestion  map[string]float64 `json:"per_question"`
	Details      map[string]Detail  `json:"details"`
}
