package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/studtest/quizbot/internal/services"
	"github.com/studtest/quizbot/internal/utils"
)

type HandlerManager struct {
	resultsHandler *ResultsHandler
}

func NewHandlerManager(results services.ResultService, validate *validator.Validate, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		resultsHandler: NewResultsHandler(results, validate, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quizbot",
		})
	})

	v1 := router.Group("/api/v1")
	{
		results := v1.Group("/results")
		{
			results.GET("", hm.resultsHandler.ListResults)
			results.GET("/student/:telegram_id", hm.resultsHandler.ListStudentResults)
			results.GET("/:id", hm.resultsHandler.GetResult)
			results.PUT("/:id/manual-score", hm.resultsHandler.SetManualScore)
		}
	}
}
