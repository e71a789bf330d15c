package http

import (
	"net/http"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GameHandler serves the game play endpoints.
type GameHandler struct {
	service *app.GameService
	logger  *zap.Logger
}

func NewGameHandler(service *app.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{service: service, logger: logger}
}

type startRequest struct {
	QuizID string `json:"quiz_id" binding:"required"`
}

type answerRequest struct {
	Choices []string `json:"choices"`
}

func (h *GameHandler) ListGames(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	games, err := h.service.ListGames(c.Request.Context(), user)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) Start(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, errBadRequest)
		return
	}
	gameID, err := h.service.Start(c.Request.Context(), user, req.QuizID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": gameID})
}

func (h *GameHandler) Next(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	question, err := h.service.Next(c.Request.Context(), user, c.Param("game_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *GameHandler) Answer(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, errBadRequest)
		return
	}
	if err := h.service.Answer(c.Request.Context(), user, c.Param("game_id"), c.Param("question_id"), req.Choices); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) Skip(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.service.Skip(c.Request.Context(), user, c.Param("game_id"), c.Param("question_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) Finish(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.service.Finish(c.Request.Context(), user, c.Param("game_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) Results(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	results, err := h.service.Results(c.Request.Context(), user, c.Param("game_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
