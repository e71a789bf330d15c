package http

import (
	"net/http"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QuizHandler serves the owner-scoped authoring endpoints.
type QuizHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewQuizHandler(service *app.QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{service: service, logger: logger}
}

type titleRequest struct {
	Title string `json:"title"`
}

type addQuestionsRequest struct {
	QuizID    string              `json:"quiz_id" binding:"required"`
	Questions []app.QuestionInput `json:"questions"`
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, errBadRequest)
		return
	}
	quiz, err := h.service.CreateQuiz(c.Request.Context(), user, req.Title)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	quizzes, err := h.service.ListQuizzes(c.Request.Context(), user)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	quiz, err := h.service.GetQuiz(c.Request.Context(), user, c.Param("quiz_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, errBadRequest)
		return
	}
	if err := h.service.UpdateQuiz(c.Request.Context(), user, c.Param("quiz_id"), req.Title); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.service.PublishQuiz(c.Request.Context(), user, c.Param("quiz_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.service.DeleteQuiz(c.Request.Context(), user, c.Param("quiz_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) QuizGames(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	games, err := h.service.QuizGames(c.Request.Context(), user, c.Param("quiz_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *QuizHandler) QuizGameDetails(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	details, err := h.service.QuizGameDetails(c.Request.Context(), user, c.Param("quiz_id"), c.Param("game_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *QuizHandler) AddQuestions(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req addQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, errBadRequest)
		return
	}
	questions, err := h.service.AddQuestions(c.Request.Context(), user, req.QuizID, req.Questions)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, questions)
}

func (h *QuizHandler) ListQuestions(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	questions, err := h.service.ListQuestions(c.Request.Context(), user, c.Param("quiz_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var patch app.QuestionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, h.logger, errBadRequest)
		return
	}
	question, err := h.service.UpdateQuestion(c.Request.Context(), user, c.Param("quiz_id"), c.Param("question_id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.service.DeleteQuestion(c.Request.Context(), user, c.Param("quiz_id"), c.Param("question_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
