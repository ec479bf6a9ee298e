// Package session keeps per-chat conversation state while a student
// works through a test.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Stage is where the conversation with a chat currently stands.
type Stage string

const (
	StageGetName  Stage = "get_name"
	StageGetGroup Stage = "get_group"
	StageAsking   Stage = "asking"
)

// Session is the in-flight state of one student's attempt.
type Session struct {
	TelegramID   int64             `json:"telegram_id"`
	TestID       string            `json:"test_id"`
	Stage        Stage             `json:"stage"`
	Index        int               `json:"index"`
	Answers      map[string]string `json:"answers"`
	StudentName  string            `json:"student_name"`
	StudentGroup string            `json:"student_group"`
	StartedAt    time.Time         `json:"started_at"`
}

// Store persists sessions keyed by Telegram chat id. Sessions expire
// after the configured TTL so abandoned attempts do not pile up.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, chatID int64) error
}
