package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studtest/quizbot/internal/utils"
)

const keyPrefix = "quizbot:session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger utils.Logger
}

// NewRedisStore backs sessions with Redis so the bot can restart
// without dropping in-flight attempts.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger utils.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *redisStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session is unrecoverable; drop it so the student
		// can start over instead of being stuck.
		s.logger.Warn("dropping corrupt session", "chat_id", chatID, "error", err)
		_ = s.client.Del(ctx, sessionKey(chatID)).Err()
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *redisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.TelegramID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, chatID)
}
