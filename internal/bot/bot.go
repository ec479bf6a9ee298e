// Package bot is the Telegram transport: it walks each chat through
// name, group and the questions of a chosen test, then hands the
// collected answers to the result service.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/studtest/quizbot/internal/models"
	"github.com/studtest/quizbot/internal/services"
	"github.com/studtest/quizbot/internal/session"
	"github.com/studtest/quizbot/internal/testbank"
	"github.com/studtest/quizbot/internal/utils"
)

type Bot struct {
	tb          *tele.Bot
	bank        *testbank.Bank
	sessions    session.Store
	results     services.ResultService
	notify      services.NotifyService
	adminChatID int64
	logger      utils.Logger
}

var (
	btnTakeTest = tele.Btn{Unique: "take"}
	btnOption   = tele.Btn{Unique: "opt"}
)

func New(
	token string,
	bank *testbank.Bank,
	sessions session.Store,
	results services.ResultService,
	notify services.NotifyService,
	adminChatID int64,
	logger utils.Logger,
) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := &Bot{
		tb:          tb,
		bank:        bank,
		sessions:    sessions,
		results:     results,
		notify:      notify,
		adminChatID: adminChatID,
		logger:      logger,
	}

	tb.Handle("/start", b.handleStart)
	tb.Handle("/cancel", b.handleCancel)
	tb.Handle("/check_updates", b.handleCheckUpdates)
	tb.Handle(&btnTakeTest, b.handleTakeTest)
	tb.Handle(&btnOption, b.handleOption)
	tb.Handle(tele.OnText, b.handleText)

	return b, nil
}

// Start blocks polling for updates until Stop is called.
func (b *Bot) Start() {
	b.logger.Info("telegram bot started", "admin_chat_id", b.adminChatID)
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
}

// SendMessage implements services.Notifier.
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.tb.Send(&tele.User{ID: chatID}, text)
	return err
}

func (b *Bot) handleStart(c tele.Context) error {
	tests := b.bank.List()
	if len(tests) == 0 {
		return c.Send("No tests are available right now, check back later.")
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, t := range tests {
		btn := markup.Data(t.Title, btnTakeTest.Unique, t.ID)
		rows = append(rows, markup.Row(btn))
	}
	markup.Inline(rows...)

	return c.Send("Hi! Pick a test to take:", markup)
}

func (b *Bot) handleCancel(c tele.Context) error {
	ctx := context.Background()
	if err := b.sessions.Delete(ctx, c.Chat().ID); err != nil {
		b.logger.Error("failed to delete session", "chat_id", c.Chat().ID, "error", err)
	}
	return c.Send("Cancelled. Send /start when you want to try again.")
}

func (b *Bot) handleTakeTest(c tele.Context) error {
	ctx := context.Background()
	testID := strings.TrimSpace(c.Data())

	test, ok := b.bank.Get(testID)
	if !ok {
		return c.Send("That test is no longer available. Send /start to see the current list.")
	}

	sess := &session.Session{
		TelegramID: c.Chat().ID,
		TestID:     test.ID,
		Stage:      session.StageGetName,
		Answers:    make(map[string]string),
		StartedAt:  time.Now(),
	}
	if err := b.sessions.Save(ctx, sess); err != nil {
		b.logger.Error("failed to save session", "chat_id", c.Chat().ID, "error", err)
		return c.Send("Something went wrong, please try /start again.")
	}

	if err := c.Respond(); err != nil {
		b.logger.Warn("failed to ack callback", "error", err)
	}
	return c.Send(fmt.Sprintf("Starting %q.\n\nFirst, what is your full name?", test.Title))
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID
	text := strings.TrimSpace(c.Text())

	sess, err := b.sessions.Get(ctx, chatID)
	if errors.Is(err, session.ErrNotFound) {
		return c.Send("Send /start to pick a test.")
	}
	if err != nil {
		b.logger.Error("failed to load session", "chat_id", chatID, "error", err)
		return c.Send("Something went wrong, please try /start again.")
	}

	test, ok := b.bank.Get(sess.TestID)
	if !ok {
		_ = b.sessions.Delete(ctx, chatID)
		return c.Send("That test is no longer available. Send /start to see the current list.")
	}

	switch sess.Stage {
	case session.StageGetName:
		if text == "" {
			return c.Send("Please send your full name as text.")
		}
		sess.StudentName = text
		sess.Stage = session.StageGetGroup
		if err := b.sessions.Save(ctx, sess); err != nil {
			return b.sessionError(c, chatID, err)
		}
		return c.Send("Got it. Which group are you in?")

	case session.StageGetGroup:
		sess.StudentGroup = text
		sess.Stage = session.StageAsking
		sess.Index = 0
		if err := b.sessions.Save(ctx, sess); err != nil {
			return b.sessionError(c, chatID, err)
		}
		return b.sendQuestion(c, test, 0)

	case session.StageAsking:
		return b.handleAnswer(ctx, c, sess, test, text)
	}

	return c.Send("Send /start to pick a test.")
}

func (b *Bot) handleAnswer(ctx context.Context, c tele.Context, sess *session.Session, test models.Test, text string) error {
	q := test.Questions[sess.Index]
	sess.Answers[q.ID] = text
	sess.Index++

	if sess.Index < len(test.Questions) {
		if err := b.sessions.Save(ctx, sess); err != nil {
			return b.sessionError(c, sess.TelegramID, err)
		}
		return b.sendQuestion(c, test, sess.Index)
	}

	return b.finish(ctx, c, sess, test)
}

// sendQuestion renders the next prompt. Single-choice questions also
// get an inline keyboard so students can tap the option instead of
// typing its letter.
func (b *Bot) sendQuestion(c tele.Context, test models.Test, index int) error {
	q := test.Questions[index]
	text := FormatQuestion(index, len(test.Questions), q)

	if q.Type == models.QuestionSingle && len(q.Options) > 0 {
		markup := &tele.ReplyMarkup{}
		var rows []tele.Row
		for i, opt := range q.Options {
			l := lowerLetter(i)
			rows = append(rows, markup.Row(markup.Data(l+") "+opt, btnOption.Unique, l)))
		}
		markup.Inline(rows...)
		return c.Send(text, markup)
	}
	return c.Send(text)
}

// handleOption records a tapped single-choice answer. Taps outside the
// asking stage, or on a question that has since moved on, are only
// acknowledged.
func (b *Bot) handleOption(c tele.Context) error {
	ctx := context.Background()
	chatID := c.Chat().ID

	sess, err := b.sessions.Get(ctx, chatID)
	if errors.Is(err, session.ErrNotFound) {
		return c.Respond()
	}
	if err != nil {
		b.logger.Error("failed to load session", "chat_id", chatID, "error", err)
		return c.Respond()
	}
	if sess.Stage != session.StageAsking {
		return c.Respond()
	}

	test, ok := b.bank.Get(sess.TestID)
	if !ok {
		_ = b.sessions.Delete(ctx, chatID)
		return c.Respond()
	}
	if test.Questions[sess.Index].Type != models.QuestionSingle {
		return c.Respond()
	}

	if err := c.Respond(); err != nil {
		b.logger.Warn("failed to ack callback", "error", err)
	}
	return b.handleAnswer(ctx, c, sess, test, strings.TrimSpace(c.Data()))
}

func (b *Bot) finish(ctx context.Context, c tele.Context, sess *session.Session, test models.Test) error {
	outcome, err := b.results.SubmitAttempt(ctx, services.Submission{
		TelegramID:   sess.TelegramID,
		StudentName:  sess.StudentName,
		StudentGroup: sess.StudentGroup,
		TestID:       test.ID,
		Answers:      sess.Answers,
		SubmittedAt:  time.Now(),
	})
	if err != nil {
		b.logger.Error("failed to submit attempt",
			"chat_id", sess.TelegramID,
			"test_id", test.ID,
			"error", err)
		return c.Send("Your answers could not be saved. Please tell your teacher and try again later.")
	}

	if err := b.sessions.Delete(ctx, sess.TelegramID); err != nil {
		b.logger.Error("failed to delete session", "chat_id", sess.TelegramID, "error", err)
	}

	if err := c.Send(FormatSummary(test, outcome.Result)); err != nil {
		return err
	}
	return c.Send(outcome.Report)
}

// handleCheckUpdates sweeps the results workbook for freshly reviewed
// attempts and notifies their students. Admin only.
func (b *Bot) handleCheckUpdates(c tele.Context) error {
	if c.Chat().ID != b.adminChatID {
		return c.Send("This command is for the teacher only.")
	}

	summary, err := b.notify.CheckUpdates(context.Background(), b)
	if err != nil {
		b.logger.Error("check_updates failed", "error", err)
		return c.Send("Could not check for updates, see the logs.")
	}
	return c.Send(fmt.Sprintf("Done: %d student(s) notified, %d failed.",
		summary.Delivered, summary.Failed))
}

func (b *Bot) sessionError(c tele.Context, chatID int64, err error) error {
	b.logger.Error("failed to save session", "chat_id", chatID, "error", err)
	return c.Send("Something went wrong, please try /start again.")
}
