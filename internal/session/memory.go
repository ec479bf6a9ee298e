package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session Session
	expires time.Time
}

type memoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[int64]memoryEntry
}

// NewMemoryStore keeps sessions in process memory. Used when no Redis
// URL is configured; state is lost on restart.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		ttl:      ttl,
		sessions: make(map[int64]memoryEntry),
	}
}

func (s *memoryStore) Get(_ context.Context, chatID int64) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[chatID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expires) {
		s.mu.Lock()
		delete(s.sessions, chatID)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	sess := entry.session
	if sess.Answers != nil {
		answers := make(map[string]string, len(sess.Answers))
		for k, v := range sess.Answers {
			answers[k] = v
		}
		sess.Answers = answers
	}
	return &sess, nil
}

func (s *memoryStore) Save(_ context.Context, sess *Session) error {
	copied := *sess
	if sess.Answers != nil {
		answers := make(map[string]string, len(sess.Answers))
		for k, v := range sess.Answers {
			answers[k] = v
		}
		copied.Answers = answers
	}

	s.mu.Lock()
	s.sessions[sess.TelegramID] = memoryEntry{
		session: copied,
		expires: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
	return nil
}
