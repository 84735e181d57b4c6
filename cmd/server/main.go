package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"github.com/sjx-training/atc-assessment-backend/internal/database"
	"github.com/sjx-training/atc-assessment-backend/internal/engine"
	"github.com/sjx-training/atc-assessment-backend/internal/handler"
	"github.com/sjx-training/atc-assessment-backend/internal/logger"
	"github.com/sjx-training/atc-assessment-backend/internal/repository"
	"github.com/sjx-training/atc-assessment-backend/internal/router"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
	"github.com/sjx-training/atc-assessment-backend/internal/validator"
	"github.com/sjx-training/atc-assessment-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ATC Assessment Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	traineeRepo := repository.NewTraineeRepository(pool)
	chapterRepo := repository.NewChapterRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Assessment Engine ──────────────────────────────────
	gate := engine.NewGate(traineeRepo, resultRepo)
	sampler := engine.NewSampler(questionRepo)
	manager := engine.NewManager(gate, sampler, resultRepo, log)
	reports := engine.NewReportBuilder(questionRepo)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	assessmentService := service.NewAssessmentService(manager, reports, traineeRepo, chapterRepo, resultRepo, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Trainee:    handler.NewTraineeHandler(authService, assessmentService),
		Assessment: handler.NewAssessmentHandler(assessmentService),
		Result:     handler.NewResultHandler(assessmentService),
		Instructor: handler.NewInstructorHandler(authService),
		Monitor:    handler.NewMonitorHandler(assessmentService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(resultRepo, rdb, log)
	go resultWorker.Start(workerCtx)

	// Session sweeper abandons stale sessions and drops terminal ones.
	go manager.Run(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop the worker and sweeper, allowing the persist queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
