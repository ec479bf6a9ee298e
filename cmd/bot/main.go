package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/studtest/quizbot/internal/bot"
	"github.com/studtest/quizbot/internal/config"
	"github.com/studtest/quizbot/internal/handlers"
	"github.com/studtest/quizbot/internal/repositories/postgres"
	"github.com/studtest/quizbot/internal/services"
	"github.com/studtest/quizbot/internal/session"
	"github.com/studtest/quizbot/internal/sheets"
	"github.com/studtest/quizbot/internal/testbank"
	"github.com/studtest/quizbot/internal/utils"
	"github.com/studtest/quizbot/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	validate := utils.NewValidator()

	bank, err := testbank.Load(cfg.TestsDir, validate, logger)
	if err != nil {
		logger.Error("failed to load test bank", "dir", cfg.TestsDir, "error", err)
		os.Exit(1)
	}
	logger.Info("test bank loaded", "dir", cfg.TestsDir, "tests", bank.Len())

	var sessions session.Store
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL, logger)
	} else {
		logger.Warn("REDIS_URL not set, sessions are in-memory and lost on restart")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	workbook, err := sheets.Open(cfg.ResultsWorkbook)
	if err != nil {
		logger.Error("failed to open results workbook", "path", cfg.ResultsWorkbook, "error", err)
		os.Exit(1)
	}

	repo := postgres.NewResultPostgreSQL(db)
	resultService := services.NewResultService(bank, repo, workbook, publisher, logger)
	notifyService := services.NewNotifyService(workbook, publisher, logger)

	quizBot, err := bot.New(
		cfg.TelegramToken,
		bank,
		sessions,
		resultService,
		notifyService,
		cfg.AdminChatID,
		logger,
	)
	if err != nil {
		logger.Error("failed to start telegram bot", "error", err)
		os.Exit(1)
	}

	go runHTTP(cfg, resultService, validate, logger)

	quizBot.Start()
}

func runHTTP(cfg *config.Config, results services.ResultService, validate *validator.Validate, logger utils.Logger) {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(results, validate, logger).SetupRoutes(router)

	logger.Info("http server listening", "port", cfg.HTTPPort)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		logger.Error("http server stopped", "error", err)
	}
}
