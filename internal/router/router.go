package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shravanthakurgit/synergiaprep/internal/config"
	"github.com/shravanthakurgit/synergiaprep/internal/handler"
	"github.com/shravanthakurgit/synergiaprep/internal/middleware"
	"github.com/shravanthakurgit/synergiaprep/internal/response"
	"github.com/shravanthakurgit/synergiaprep/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam       *handler.ExamHandler
	Attempt    *handler.AttemptSessionHandler
	Submission *handler.SubmissionHandler
	Report     *handler.ReportHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
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

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the submission pipeline (30 requests per minute per
	// IP). Normal clients submit once; this caps retry storms.
	submitLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. API Group (JWT) ────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUserJWT(authService))
	{
		api.GET("/exams/:exam_id", handlers.Exam.GetExamPaper)
		api.POST("/exams/:exam_id/join", handlers.Attempt.Join)
		api.GET("/exams/:exam_id/state", handlers.Attempt.GetState)

		submissions := api.Group("")
		submissions.Use(submitLimiter.Middleware())
		{
			submissions.POST("/user-submissions", handlers.Submission.Record)
			submissions.POST("/user-submissions/:submission_id/score", handlers.Submission.Score)
			submissions.POST("/reports/exams/:exam_id/generate-report", handlers.Report.Generate)
		}
	}

	// ─── 2. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/exams/:exam_id/stream", handlers.WS.ExamStream)
	}

	return router
}
