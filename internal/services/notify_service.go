package services

import (
	"context"
	"fmt"
	"time"

	"github.com/studtest/quizbot/internal/events"
	"github.com/studtest/quizbot/internal/sheets"
	"github.com/studtest/quizbot/internal/utils"
)

// Notifier delivers a plain-text message to a Telegram chat. The bot
// transport implements it.
type Notifier interface {
	SendMessage(chatID int64, text string) error
}

// NotifySummary reports one notification sweep.
type NotifySummary struct {
	Delivered int
	Failed    int
}

// NotifyService sweeps the results workbook for manual scores the
// teacher filled in and pushes them back to the students.
type NotifyService interface {
	CheckUpdates(ctx context.Context, notifier Notifier) (*NotifySummary, error)
}

type notifyService struct {
	workbook  *sheets.Workbook
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewNotifyService(workbook *sheets.Workbook, publisher events.EventPublisher, logger utils.Logger) NotifyService {
	return &notifyService{
		workbook:  workbook,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *notifyService) CheckUpdates(ctx context.Context, notifier Notifier) (*NotifySummary, error) {
	if notifier == nil {
		return nil, ErrNotifierNotSet
	}
	if s.workbook == nil {
		return nil, ErrWorkbookNotSet
	}

	pending, err := s.workbook.PendingNotifications()
	if err != nil {
		return nil, NewServiceError("check_updates", "failed to read pending notifications", err)
	}

	summary := &NotifySummary{}
	for _, p := range pending {
		text := fmt.Sprintf("Your test %q has been reviewed. Final score: %s.",
			p.TestTitle, utils.FormatScore(p.ManualScore))

		if err := notifier.SendMessage(p.TelegramID, text); err != nil {
			s.logger.Error("failed to notify student",
				"telegram_id", p.TelegramID,
				"row", p.Row,
				"error", err)
			summary.Failed++
			continue
		}

		// Only flag the row after the message went out, so a failed
		// send is retried on the next sweep.
		if err := s.workbook.MarkNotified(p.Row); err != nil {
			s.logger.Error("failed to mark row notified", "row", p.Row, "error", err)
			summary.Failed++
			continue
		}
		summary.Delivered++

		s.publishPublished(ctx, p)
	}

	s.logger.InfoContext(ctx, "notification sweep finished",
		"delivered", summary.Delivered,
		"failed", summary.Failed)
	return summary, nil
}

func (s *notifyService) publishPublished(ctx context.Context, p sheets.PendingRow) {
	if s.publisher == nil {
		return
	}
	event := events.NewManualScorePublishedEvent(events.ManualScorePublishedEvent{
		TestID:      p.TestID,
		TelegramID:  p.TelegramID,
		ManualScore: p.ManualScore,
		NotifiedAt:  time.Now(),
	})
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish result event", "event_type", event.Type, "error", err)
	}
}
