package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	loadQuizSQL = `SELECT id, title, owner_id, is_deleted, created_at, updated_at
FROM quizzes
WHERE id = $1 AND is_published`

	loadQuestionsSQL = `SELECT q.id, q.title, q.question_type, q.order_id, a.id, a.value, a.is_correct
FROM questions q
JOIN answers a ON a.question_id = q.id
WHERE q.quiz_id = $1
ORDER BY q.order_id, a.position`
)

// QuizLoader reads published quizzes with their ordered questions straight
// from the pool. Soft deleted quizzes stay loadable so running games finish.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz := domain.Quiz{Published: true}
	err := l.pool.QueryRow(ctx, loadQuizSQL, quizID).
		Scan(&quiz.ID, &quiz.Title, &quiz.OwnerID, &quiz.Deleted, &quiz.CreatedAt, &quiz.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, loadQuestionsSQL, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = make([]domain.Question, 0)
	for rows.Next() {
		var (
			question domain.Question
			answer   domain.Answer
			kind     string
		)
		if err := rows.Scan(&question.ID, &question.Title, &kind, &question.Order, &answer.ID, &answer.Value, &answer.IsCorrect); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		last := len(quiz.Questions) - 1
		if last < 0 || quiz.Questions[last].ID != question.ID {
			question.QuizID = quiz.ID
			question.Type = domain.QuestionType(kind)
			quiz.Questions = append(quiz.Questions, question)
			last++
		}
		quiz.Questions[last].Answers = append(quiz.Questions[last].Answers, answer)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}

// Ping reports whether the pool can reach the database.
func (l *QuizLoader) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}
