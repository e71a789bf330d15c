package app

import (
	"context"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
)

// QuizRepository serves published quiz content with its ordered questions
// (from cache/backing store). Published quizzes are immutable, so
// implementations may cache freely.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// CatalogStore is the authoritative store of authored quizzes. Reads return
// only non-deleted quizzes, with questions in order.
//
// Every mutation re-checks the quiz state atomically with its write:
// RenameQuiz and the question mutators fail with domain.ErrQuizPublished once
// the quiz is published, and PublishQuiz fails with domain.ErrPublishEmpty
// when the quiz has no questions.
type CatalogStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, ownerID string) ([]domain.Quiz, error)
	RenameQuiz(ctx context.Context, quizID, title string, at time.Time) error
	PublishQuiz(ctx context.Context, quizID string, at time.Time) error
	DeleteQuiz(ctx context.Context, quizID string, at time.Time) error
	AddQuestions(ctx context.Context, quizID string, questions []domain.Question) error
	ReplaceQuestion(ctx context.Context, question domain.Question) error
	DeleteQuestion(ctx context.Context, quizID, questionID string) error
}

// GameRepository stores games and their served questions. Apply must be
// atomic and must reject transitions of game questions that are no longer
// pending.
type GameRepository interface {
	// CreateGame inserts game unless one exists for the same user and quiz,
	// in which case the existing game is returned.
	CreateGame(ctx context.Context, game domain.Game) (domain.Game, error)
	GetGame(ctx context.Context, gameID string) (domain.Game, error)
	ListGamesByUser(ctx context.Context, userID string) ([]domain.Game, error)
	ListGamesByQuiz(ctx context.Context, quizID string) ([]domain.Game, error)
	// FinishGame marks the game finished; it fails with domain.ErrGameFinished
	// if it already was.
	FinishGame(ctx context.Context, gameID string) error

	// EnsureGameQuestion returns the game question for (game, question),
	// creating it in the pending state on first use.
	EnsureGameQuestion(ctx context.Context, gq domain.GameQuestion) (domain.GameQuestion, error)
	GetGameQuestion(ctx context.Context, gameID, gameQuestionID string) (domain.GameQuestion, error)
	ListGameQuestions(ctx context.Context, gameID string) ([]domain.GameQuestion, error)
	// ListGameAnswers returns the choices recorded by Apply across the game.
	ListGameAnswers(ctx context.Context, gameID string) ([]domain.GameAnswer, error)
	Apply(ctx context.Context, t domain.Transition) error
}

// Observer receives game lifecycle signals (metrics, audit).
type Observer interface {
	GameStarted()
	QuestionAnswered(score float64)
	QuestionSkipped()
	GameFinished()
}

type nopObserver struct{}

func (nopObserver) GameStarted()             {}
func (nopObserver) QuestionAnswered(float64) {}
func (nopObserver) QuestionSkipped()         {}
func (nopObserver) GameFinished()            {}
