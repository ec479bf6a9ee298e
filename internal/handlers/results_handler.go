package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/studtest/quizbot/internal/repositories"
	"github.com/studtest/quizbot/internal/services"
	"github.com/studtest/quizbot/internal/utils"
)

// ResultsHandler exposes graded attempts to teachers over HTTP.
type ResultsHandler struct {
	BaseHandler
	results  services.ResultService
	validate *validator.Validate
}

func NewResultsHandler(results services.ResultService, validate *validator.Validate, logger utils.Logger) *ResultsHandler {
	return &ResultsHandler{
		BaseHandler: NewBaseHandler(logger),
		results:     results,
		validate:    validate,
	}
}

// SetManualScoreRequest is the teacher's sign-off on a free-text answer.
type SetManualScoreRequest struct {
	Score   float64 `json:"score" validate:"gte=0"`
	Comment string  `json:"comment" validate:"max=500"`
}

// ListResults handles GET /api/v1/results
func (h *ResultsHandler) ListResults(c *gin.Context) {
	filters := repositories.ResultFilters{
		TestID:       c.Query("test_id"),
		StudentGroup: c.Query("group"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}

	if v := c.Query("manual_needed"); v != "" {
		manual, err := strconv.ParseBool(v)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "invalid manual_needed value", err)
			return
		}
		filters.ManualNeeded = &manual
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "invalid from timestamp", err)
			return
		}
		filters.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "invalid to timestamp", err)
			return
		}
		filters.To = &to
	}
	filters.Limit = intQuery(c, "limit", 50)
	filters.Offset = intQuery(c, "offset", 0)

	results, total, err := h.results.ListResults(c.Request.Context(), filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "failed to list results", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   total,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// ListStudentResults handles GET /api/v1/results/student/:telegram_id
func (h *ResultsHandler) ListStudentResults(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid telegram id", err)
		return
	}

	results, err := h.results.ListStudentResults(c.Request.Context(), telegramID)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "failed to list student results", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// GetResult handles GET /api/v1/results/:id
func (h *ResultsHandler) GetResult(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid result id", err)
		return
	}

	result, err := h.results.GetResult(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			h.RespondWithError(c, http.StatusNotFound, "result not found", nil)
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "failed to get result", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetManualScore handles PUT /api/v1/results/:id/manual-score
func (h *ResultsHandler) SetManualScore(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid result id", err)
		return
	}

	var req SetManualScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "validation failed", err)
		return
	}

	result, err := h.results.SetManualScore(c.Request.Context(), id, req.Score, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResultNotFound):
			h.RespondWithError(c, http.StatusNotFound, "result not found", nil)
		case errors.Is(err, services.ErrInvalidScore):
			h.RespondWithError(c, http.StatusBadRequest, "invalid score value", nil)
		default:
			h.RespondWithError(c, http.StatusInternalServerError, "failed to set manual score", err)
		}
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "manual score saved", result)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
