package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"github.com/sjx-training/atc-assessment-backend/internal/handler"
	"github.com/sjx-training/atc-assessment-backend/internal/middleware"
	"github.com/sjx-training/atc-assessment-backend/internal/response"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Trainee    *handler.TraineeHandler
	Assessment *handler.AssessmentHandler
	Result     *handler.ResultHandler
	Instructor *handler.InstructorHandler
	Monitor    *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the unauthenticated entry points (30 requests per
	// minute per IP). Callsign identification and the instructor login are
	// the only surfaces reachable without a token.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	public := router.Group("/api/v1")
	public.Use(authLimiter.Middleware())
	{
		public.POST("/identify", handlers.Trainee.Identify)
		public.POST("/instructor/login", handlers.Instructor.Login)
	}

	trainee := router.Group("/api/v1")
	trainee.Use(middleware.RequireTraineeJWT(authService))
	{
		trainee.POST("/sessions/quiz", handlers.Assessment.StartQuiz)
		trainee.POST("/sessions/final", handlers.Assessment.StartFinal)
		trainee.GET("/sessions/:id", handlers.Assessment.GetState)
		trainee.PUT("/sessions/:id/answers", handlers.Assessment.RecordAnswer)
		trainee.POST("/sessions/:id/submit", handlers.Assessment.Submit)
		trainee.POST("/sessions/:id/persist", handlers.Assessment.RetryPersist)

		trainee.GET("/results", handlers.Result.List)
		trainee.GET("/results/:id/report", handlers.Result.Report)
	}

	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireInstructorWSAuth(authService))
	{
		ws.GET("/instructor/monitor", handlers.Monitor.Stream)
	}

	return router
}
