package postgres

import (
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/uptrace/bun"
)

type quizModel struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID        string           `bun:"id,pk"`
	Title     string           `bun:"title,notnull"`
	OwnerID   string           `bun:"owner_id,notnull"`
	Published bool             `bun:"is_published,notnull"`
	Deleted   bool             `bun:"is_deleted,notnull"`
	CreatedAt time.Time        `bun:"created_at,notnull"`
	UpdatedAt time.Time        `bun:"updated_at,notnull"`
	Questions []*questionModel `bun:"rel:has-many,join:id=quiz_id"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID      string         `bun:"id,pk"`
	QuizID  string         `bun:"quiz_id,notnull"`
	Title   string         `bun:"title,notnull"`
	Type    string         `bun:"question_type,notnull"`
	Order   int64          `bun:"order_id,notnull"`
	Answers []*answerModel `bun:"rel:has-many,join:id=question_id"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers,alias:an"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id,notnull"`
	Value      string `bun:"value,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
	Position   int    `bun:"position,notnull"`
}

type gameModel struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	QuizID    string    `bun:"quiz_id,notnull"`
	Finished  bool      `bun:"is_finished,notnull"`
	Score     float64   `bun:"score,notnull"`
	Offset    int       `bun:"question_offset,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type gameQuestionModel struct {
	bun.BaseModel `bun:"table:game_questions,alias:gq"`

	ID          string    `bun:"id,pk"`
	GameID      string    `bun:"game_id,notnull"`
	QuestionID  string    `bun:"question_id,notnull"`
	State       string    `bun:"state,notnull"`
	AnswerScore float64   `bun:"answer_score,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

type gameAnswerModel struct {
	bun.BaseModel `bun:"table:game_answers,alias:ga"`

	ID             string `bun:"id,pk"`
	GameQuestionID string `bun:"game_question_id,notnull"`
	AnswerID       string `bun:"answer_id,notnull"`
}

func newQuizModel(quiz domain.Quiz) *quizModel {
	return &quizModel{
		ID:        quiz.ID,
		Title:     quiz.Title,
		OwnerID:   quiz.OwnerID,
		Published: quiz.Published,
		Deleted:   quiz.Deleted,
		CreatedAt: quiz.CreatedAt,
		UpdatedAt: quiz.UpdatedAt,
	}
}

func (m *quizModel) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		ID:        m.ID,
		Title:     m.Title,
		OwnerID:   m.OwnerID,
		Published: m.Published,
		Deleted:   m.Deleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Questions: make([]domain.Question, 0, len(m.Questions)),
	}
	for _, question := range m.Questions {
		quiz.Questions = append(quiz.Questions, question.toDomain())
	}
	return quiz
}

func newQuestionModel(question domain.Question) *questionModel {
	return &questionModel{
		ID:     question.ID,
		QuizID: question.QuizID,
		Title:  question.Title,
		Type:   string(question.Type),
		Order:  question.Order,
	}
}

func newAnswerModels(question domain.Question) []*answerModel {
	answers := make([]*answerModel, 0, len(question.Answers))
	for i, answer := range question.Answers {
		answers = append(answers, &answerModel{
			ID:         answer.ID,
			QuestionID: question.ID,
			Value:      answer.Value,
			IsCorrect:  answer.IsCorrect,
			Position:   i,
		})
	}
	return answers
}

func (m *questionModel) toDomain() domain.Question {
	question := domain.Question{
		ID:      m.ID,
		QuizID:  m.QuizID,
		Title:   m.Title,
		Type:    domain.QuestionType(m.Type),
		Order:   m.Order,
		Answers: make([]domain.Answer, 0, len(m.Answers)),
	}
	for _, answer := range m.Answers {
		question.Answers = append(question.Answers, domain.Answer{
			ID:        answer.ID,
			Value:     answer.Value,
			IsCorrect: answer.IsCorrect,
		})
	}
	return question
}

func newGameModel(game domain.Game) *gameModel {
	return &gameModel{
		ID:        game.ID,
		UserID:    game.UserID,
		QuizID:    game.QuizID,
		Finished:  game.Finished,
		Score:     game.Score,
		Offset:    game.Offset,
		CreatedAt: game.CreatedAt,
		UpdatedAt: game.UpdatedAt,
	}
}

func (m *gameModel) toDomain() domain.Game {
	return domain.Game{
		ID:        m.ID,
		UserID:    m.UserID,
		QuizID:    m.QuizID,
		Finished:  m.Finished,
		Score:     m.Score,
		Offset:    m.Offset,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m *gameQuestionModel) toDomain() domain.GameQuestion {
	return domain.GameQuestion{
		ID:          m.ID,
		GameID:      m.GameID,
		QuestionID:  m.QuestionID,
		State:       domain.QuestionState(m.State),
		AnswerScore: m.AnswerScore,
	}
}
