package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studtest/quizbot/internal/models"
)

// ResultRepository stores graded attempts. Notification bookkeeping
// lives in the results workbook, not here, so there is no notified
// mutation; pending-manual listings go through List with the
// ManualNeeded filter.
type ResultRepository interface {
	Create(ctx context.Context, result *models.TestResult) error
	GetByID(ctx context.Context, id uint) (*models.TestResult, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.TestResult, int64, error)
	GetByStudent(ctx context.Context, telegramID int64) ([]*models.TestResult, error)
	SetManualScore(ctx context.Context, id uint, score float64, comment string) error
}

// ResultFilters narrows and pages result listings.
type ResultFilters struct {
	TestID       string
	StudentGroup string
	ManualNeeded *bool
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
	SortBy       string // "submitted_at" or "score"
	SortOrder    string // "asc" or "desc"
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
