package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studtest/quizbot/internal/models"
	"github.com/studtest/quizbot/internal/repositories"
	"github.com/studtest/quizbot/internal/services"
	"github.com/studtest/quizbot/internal/utils"
)

type stubResultService struct {
	records map[uint]*models.TestResult
}

func (s *stubResultService) SubmitAttempt(_ context.Context, _ services.Submission) (*services.SubmissionOutcome, error) {
	panic("not used in handler tests")
}

func (s *stubResultService) GetResult(_ context.Context, id uint) (*models.TestResult, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, services.ErrResultNotFound
	}
	return record, nil
}

func (s *stubResultService) ListResults(_ context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	var out []*models.TestResult
	for _, record := range s.records {
		if filters.TestID != "" && record.TestID != filters.TestID {
			continue
		}
		out = append(out, record)
	}
	return out, int64(len(out)), nil
}

func (s *stubResultService) ListStudentResults(_ context.Context, telegramID int64) ([]*models.TestResult, error) {
	var out []*models.TestResult
	for _, record := range s.records {
		if record.TelegramID == telegramID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubResultService) SetManualScore(_ context.Context, id uint, score float64, comment string) (*models.TestResult, error) {
	if score < 0 {
		return nil, services.ErrInvalidScore
	}
	record, ok := s.records[id]
	if !ok {
		return nil, services.ErrResultNotFound
	}
	record.ManualScoreTotal = &score
	record.TeacherComment = comment
	return record, nil
}

func newTestRouter(records map[uint]*models.TestResult) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandlerManager(&stubResultService{records: records}, utils.NewValidator(), utils.NewDefaultLogger()).SetupRoutes(router)
	return router
}

func seedRecords() map[uint]*models.TestResult {
	return map[uint]*models.TestResult{
		1: {ID: 1, TestID: "bio1", StudentName: "Ivan", TelegramID: 700, Score: 7.5, MaxScore: 10, ManualNeeded: true},
		2: {ID: 2, TestID: "chem1", StudentName: "Anna", TelegramID: 701, Score: 4, MaxScore: 5},
	}
}

func TestListResults(t *testing.T) {
	router := newTestRouter(seedRecords())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/results?test_id=bio1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []models.TestResult `json:"results"`
		Total   int64               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "bio1", body.Results[0].TestID)
	assert.Equal(t, int64(1), body.Total)
}

func TestListResultsBadFilter(t *testing.T) {
	router := newTestRouter(seedRecords())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/results?manual_needed=maybe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListStudentResults(t *testing.T) {
	router := newTestRouter(seedRecords())

	t.Run("filters by telegram id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/student/700", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Results []models.TestResult `json:"results"`
			Total   int                 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Results, 1)
		assert.Equal(t, "Ivan", body.Results[0].StudentName)
	})

	t.Run("bad telegram id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/student/abc", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetResult(t *testing.T) {
	router := newTestRouter(seedRecords())

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/1", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var record models.TestResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, "Ivan", record.StudentName)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/99", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/abc", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSetManualScore(t *testing.T) {
	records := seedRecords()
	router := newTestRouter(records)

	t.Run("saves score and comment", func(t *testing.T) {
		body, _ := json.Marshal(SetManualScoreRequest{Score: 9, Comment: "well argued"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/results/1/manual-score", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, records[1].ManualScoreTotal)
		assert.Equal(t, 9.0, *records[1].ManualScoreTotal)
		assert.Equal(t, "well argued", records[1].TeacherComment)
	})

	t.Run("negative score rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]float64{"score": -2})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/results/1/manual-score", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing record", func(t *testing.T) {
		body, _ := json.Marshal(SetManualScoreRequest{Score: 1})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/results/99/manual-score", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
