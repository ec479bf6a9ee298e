package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestResult is one persisted row per completed test attempt, the
// database twin of the results workbook row. ManualScoreTotal and
// TeacherComment stay empty until a teacher fills them in.
type TestResult struct {
	ID uint `json:"id" gorm:"primaryKey"`

	StudentName  string `json:"student_name" gorm:"not null;size:200"`
	StudentGroup string `json:"student_group" gorm:"size:100"`
	TelegramID   int64  `json:"telegram_id" gorm:"index"`

	TestID    string `json:"test_id" gorm:"not null;index;size:100"`
	TestTitle string `json:"test_title" gorm:"size:200"`

	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	AutoScore    float64 `json:"auto_score"`
	ManualNeeded bool    `json:"manual_needed"`

	ManualScoreTotal *float64 `json:"manual_score_total,omitempty"`
	TeacherComment   string   `json:"teacher_comment" gorm:"size:500"`
	Notified         bool     `json:"notified"`

	// Raw answer map as submitted, keyed by question id.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
