package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/studtest/quizbot/internal/models"
	"github.com/studtest/quizbot/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, result *models.TestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TestResult, error) {
	var result models.TestResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	var results []*models.TestResult
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TestResult{})
	query = applyResultFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyResultPagination(query, filters)
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *ResultPostgreSQL) GetByStudent(ctx context.Context, telegramID int64) ([]*models.TestResult, error) {
	var results []*models.TestResult
	err := r.db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Order("submitted_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultPostgreSQL) SetManualScore(ctx context.Context, id uint, score float64, comment string) error {
	updates := map[string]interface{}{
		"manual_score_total": score,
		"teacher_comment":    comment,
	}
	result := r.db.WithContext(ctx).Model(&models.TestResult{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func applyResultFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.TestID != "" {
		query = query.Where("test_id = ?", filters.TestID)
	}
	if filters.StudentGroup != "" {
		query = query.Where("student_group = ?", filters.StudentGroup)
	}
	if filters.ManualNeeded != nil {
		query = query.Where("manual_needed = ?", *filters.ManualNeeded)
	}
	if filters.From != nil {
		query = query.Where("submitted_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("submitted_at <= ?", *filters.To)
	}
	return query
}

func applyResultPagination(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	sortBy := "submitted_at"
	if filters.SortBy == "score" {
		sortBy = "score"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
