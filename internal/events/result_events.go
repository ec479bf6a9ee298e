package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Result events
	EventResultRecorded       EventType = "result.recorded"
	EventManualReviewRequired EventType = "result.manual_review_required"

	// Teacher sign-off events
	EventManualScorePublished EventType = "result.manual_score_published"
)

const eventSource = "quizbot-service"

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ResultRecordedEvent is emitted after every finished attempt.
type ResultRecordedEvent struct {
	TestID       string    `json:"test_id"`
	TestTitle    string    `json:"test_title"`
	StudentName  string    `json:"student_name"`
	StudentGroup string    `json:"student_group,omitempty"`
	TelegramID   int64     `json:"telegram_id"`
	Score        float64   `json:"score"`
	MaxScore     float64   `json:"max_score"`
	AutoScore    float64   `json:"auto_score"`
	ManualNeeded bool      `json:"manual_needed"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ManualReviewRequiredEvent points teachers at attempts with free-text
// answers waiting for an authoritative score.
type ManualReviewRequiredEvent struct {
	TestID      string   `json:"test_id"`
	TestTitle   string   `json:"test_title"`
	StudentName string   `json:"student_name"`
	TelegramID  int64    `json:"telegram_id"`
	QuestionIDs []string `json:"question_ids"`
}

// ManualScorePublishedEvent is emitted when a teacher-entered total has
// been delivered back to the student.
type ManualScorePublishedEvent struct {
	TestID      string    `json:"test_id"`
	TelegramID  int64     `json:"telegram_id"`
	ManualScore float64   `json:"manual_score"`
	NotifiedAt  time.Time `json:"notified_at"`
}

func NewResultRecordedEvent(data ResultRecordedEvent) *NotificationEvent {
	return newEvent(EventResultRecorded, data)
}

func NewManualReviewRequiredEvent(data ManualReviewRequiredEvent) *NotificationEvent {
	return newEvent(EventManualReviewRequired, data)
}

func NewManualScorePublishedEvent(data ManualScorePublishedEvent) *NotificationEvent {
	return newEvent(EventManualScorePublished, data)
}

func newEvent(t EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}

// GenerateEventID returns a unique id for a new event.
func GenerateEventID() string {
	return uuid.NewString()
}
