package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/studtest/quizbot/internal/events"
	"github.com/studtest/quizbot/internal/grading"
	"github.com/studtest/quizbot/internal/models"
	"github.com/studtest/quizbot/internal/repositories"
	"github.com/studtest/quizbot/internal/sheets"
	"github.com/studtest/quizbot/internal/testbank"
	"github.com/studtest/quizbot/internal/utils"
)

// Submission is a completed attempt as collected by the conversation
// flow, before grading.
type Submission struct {
	TelegramID   int64
	StudentName  string
	StudentGroup string
	TestID       string
	Answers      map[string]string
	SubmittedAt  time.Time
}

// SubmissionOutcome carries everything the transport layer needs to
// answer the student.
type SubmissionOutcome struct {
	Result   models.Result
	Report   string
	RecordID uint
}

// ResultService grades submissions and fans the outcome out to the
// database, the results workbook and the event bus.
type ResultService interface {
	SubmitAttempt(ctx context.Context, sub Submission) (*SubmissionOutcome, error)
	GetResult(ctx context.Context, id uint) (*models.TestResult, error)
	ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error)
	ListStudentResults(ctx context.Context, telegramID int64) ([]*models.TestResult, error)
	SetManualScore(ctx context.Context, id uint, score float64, comment string) (*models.TestResult, error)
}

type resultService struct {
	bank      *testbank.Bank
	repo      repositories.ResultRepository
	workbook  *sheets.Workbook
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewResultService(
	bank *testbank.Bank,
	repo repositories.ResultRepository,
	workbook *sheets.Workbook,
	publisher events.EventPublisher,
	logger utils.Logger,
) ResultService {
	return &resultService{
		bank:      bank,
		repo:      repo,
		workbook:  workbook,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *resultService) SubmitAttempt(ctx context.Context, sub Submission) (*SubmissionOutcome, error) {
	test, ok := s.bank.Get(sub.TestID)
	if !ok {
		return nil, ErrTestNotFound
	}
	if len(sub.Answers) == 0 {
		return nil, ErrEmptySubmission
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}

	result := grading.Grade(test, sub.Answers)
	report := grading.BuildReport(test, result)

	s.logger.InfoContext(ctx, "attempt graded",
		"test_id", sub.TestID,
		"telegram_id", sub.TelegramID,
		"score", result.Score,
		"max_score", result.MaxScore,
		"manual_needed", result.ManualNeeded)

	record, err := s.persist(ctx, test, sub, result)
	if err != nil {
		return nil, NewServiceError("submit_attempt", "failed to store result", err)
	}

	// Workbook and event failures must not lose the student's result;
	// the database row above is the source of truth.
	s.appendToWorkbook(test, sub, result)
	s.publishEvents(ctx, test, sub, result)

	return &SubmissionOutcome{
		Result:   result,
		Report:   report,
		RecordID: record.ID,
	}, nil
}

func (s *resultService) GetResult(ctx context.Context, id uint) (*models.TestResult, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return record, nil
}

func (s *resultService) ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	return s.repo.List(ctx, filters)
}

func (s *resultService) ListStudentResults(ctx context.Context, telegramID int64) ([]*models.TestResult, error) {
	return s.repo.GetByStudent(ctx, telegramID)
}

func (s *resultService) SetManualScore(ctx context.Context, id uint, score float64, comment string) (*models.TestResult, error) {
	if score < 0 {
		return nil, ErrInvalidScore
	}
	if err := s.repo.SetManualScore(ctx, id, score, comment); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to set manual score: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *resultService) persist(ctx context.Context, test models.Test, sub Submission, result models.Result) (*models.TestResult, error) {
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	record := &models.TestResult{
		StudentName:  sub.StudentName,
		StudentGroup: sub.StudentGroup,
		TelegramID:   sub.TelegramID,
		TestID:       test.ID,
		TestTitle:    test.Title,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
		AutoScore:    result.AutoScore,
		ManualNeeded: result.ManualNeeded,
		Answers:      answersJSON,
		SubmittedAt:  sub.SubmittedAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *resultService) appendToWorkbook(test models.Test, sub Submission, result models.Result) {
	if s.workbook == nil {
		return
	}

	row := sheets.ResultRow{
		Timestamp:    sub.SubmittedAt,
		StudentName:  sub.StudentName,
		StudentGroup: sub.StudentGroup,
		TestID:       test.ID,
		TestTitle:    test.Title,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
		AutoScore:    result.AutoScore,
		ManualNeeded: result.ManualNeeded,
		AllAnswers:   sub.Answers,
		FreeTextRaw:  freeTextAnswers(test, sub.Answers),
		TelegramID:   sub.TelegramID,
	}
	if err := s.workbook.Append(row); err != nil {
		s.logger.Error("failed to append result to workbook",
			"test_id", test.ID,
			"telegram_id", sub.TelegramID,
			"error", err)
	}
}

func (s *resultService) publishEvents(ctx context.Context, test models.Test, sub Submission, result models.Result) {
	if s.publisher == nil {
		return
	}

	recorded := events.NewResultRecordedEvent(events.ResultRecordedEvent{
		TestID:       test.ID,
		TestTitle:    test.Title,
		StudentName:  sub.StudentName,
		StudentGroup: sub.StudentGroup,
		TelegramID:   sub.TelegramID,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
		AutoScore:    result.AutoScore,
		ManualNeeded: result.ManualNeeded,
		SubmittedAt:  sub.SubmittedAt,
	})
	if err := s.publisher.PublishNotificationEvent(ctx, recorded); err != nil {
		s.logger.Error("failed to publish result event", "event_type", recorded.Type, "error", err)
	}

	if !result.ManualNeeded {
		return
	}
	review := events.NewManualReviewRequiredEvent(events.ManualReviewRequiredEvent{
		TestID:      test.ID,
		TestTitle:   test.Title,
		StudentName: sub.StudentName,
		TelegramID:  sub.TelegramID,
		QuestionIDs: freeTextQuestionIDs(test),
	})
	if err := s.publisher.PublishNotificationEvent(ctx, review); err != nil {
		s.logger.Error("failed to publish result event", "event_type", review.Type, "error", err)
	}
}

func freeTextAnswers(test models.Test, answers map[string]string) map[string]string {
	raw := make(map[string]string)
	for _, q := range test.Questions {
		if !q.Type.IsFreeText() {
			continue
		}
		if ans, ok := answers[q.ID]; ok {
			raw[q.ID] = ans
		}
	}
	return raw
}

func freeTextQuestionIDs(test models.Test) []string {
	var ids []string
	for _, q := range test.Questions {
		if q.Type.IsFreeText() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}
