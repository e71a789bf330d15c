package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/bersena911/quizapi/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is a storage dependency reported by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Games       *app.GameService
	Quizzes     *app.QuizService
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	JWTSecret   []byte
	CORSOrigins []string
	Storage     map[string]Pinger
}

// NewRouter builds the gin engine serving the REST API under /api/v1, the
// websocket play channel and /metrics.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(recovery(logger), requestLogger(logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	quizzes := NewQuizHandler(cfg.Quizzes, logger)
	games := NewGameHandler(cfg.Games, logger)
	ws := NewWSHandler(cfg.Games, logger)
	health := newHealthHandler(cfg.Storage)

	api := router.Group("/api/v1")
	api.GET("/health", health.Health)

	protected := api.Group("")
	protected.Use(Authenticate(cfg.JWTSecret))
	{
		protected.POST("/quizzes", quizzes.CreateQuiz)
		protected.GET("/quizzes", quizzes.ListQuizzes)
		protected.GET("/quizzes/:quiz_id", quizzes.GetQuiz)
		protected.PATCH("/quizzes/:quiz_id", quizzes.UpdateQuiz)
		protected.PATCH("/quizzes/:quiz_id/publish", quizzes.PublishQuiz)
		protected.DELETE("/quizzes/:quiz_id", quizzes.DeleteQuiz)
		protected.GET("/quizzes/:quiz_id/games", quizzes.QuizGames)
		protected.GET("/quizzes/:quiz_id/games/:game_id", quizzes.QuizGameDetails)
		protected.GET("/quizzes/:quiz_id/questions", quizzes.ListQuestions)
		protected.PATCH("/quizzes/:quiz_id/questions/:question_id", quizzes.UpdateQuestion)
		protected.DELETE("/quizzes/:quiz_id/questions/:question_id", quizzes.DeleteQuestion)
		protected.POST("/questions", quizzes.AddQuestions)

		protected.GET("/games", games.ListGames)
		protected.POST("/games/start", games.Start)
		protected.GET("/games/:game_id/next", games.Next)
		protected.POST("/games/:game_id/questions/:question_id/answer", games.Answer)
		protected.POST("/games/:game_id/questions/:question_id/skip", games.Skip)
		protected.POST("/games/:game_id/finish", games.Finish)
		protected.GET("/games/:game_id/results", games.Results)
		protected.GET("/games/:game_id/ws", ws.ServeWS)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return router
}
