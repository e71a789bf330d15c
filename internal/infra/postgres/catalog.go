package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/uptrace/bun"
)

// Catalog implements app.CatalogStore on top of bun.
type Catalog struct {
	db *bun.DB
}

func NewCatalog(db *bun.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if _, err := c.db.NewInsert().Model(newQuizModel(quiz)).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	model := new(quizModel)
	err := c.selectQuizzes(model).
		Where("qz.id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}
	return model.toDomain(), nil
}

func (c *Catalog) ListQuizzes(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	var models []*quizModel
	err := c.selectQuizzes(&models).
		Where("qz.owner_id = ?", ownerID).
		Order("qz.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(models))
	for _, model := range models {
		quizzes = append(quizzes, model.toDomain())
	}
	return quizzes, nil
}

// selectQuizzes loads non-deleted quizzes with their questions and answers
// in play order.
func (c *Catalog) selectQuizzes(model interface{}) *bun.SelectQuery {
	return c.db.NewSelect().
		Model(model).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("qs.order_id ASC")
		}).
		Relation("Questions.Answers", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("an.position ASC")
		}).
		Where("qz.is_deleted = FALSE")
}

func (c *Catalog) RenameQuiz(ctx context.Context, quizID, title string, at time.Time) error {
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEditableQuiz(ctx, tx, quizID); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*quizModel)(nil)).
			Set("title = ?", title).
			Set("updated_at = ?", at).
			Where("id = ?", quizID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("rename quiz: %w", err)
		}
		return nil
	})
}

// PublishQuiz holds the quiz row lock while counting questions, so it
// serialises with the question mutators.
func (c *Catalog) PublishQuiz(ctx context.Context, quizID string, at time.Time) error {
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEditableQuiz(ctx, tx, quizID); err != nil {
			return err
		}
		questions, err := countQuestions(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if questions == 0 {
			return domain.ErrPublishEmpty
		}
		_, err = tx.NewUpdate().
			Model((*quizModel)(nil)).
			Set("is_published = TRUE").
			Set("updated_at = ?", at).
			Where("id = ?", quizID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("publish quiz: %w", err)
		}
		return nil
	})
}

func (c *Catalog) DeleteQuiz(ctx context.Context, quizID string, at time.Time) error {
	res, err := c.db.NewUpdate().
		Model((*quizModel)(nil)).
		Set("is_deleted = TRUE").
		Set("updated_at = ?", at).
		Where("id = ?", quizID).
		Where("is_deleted = FALSE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return expectRow(res, domain.ErrQuizNotFound)
}

// AddQuestions locks the quiz row so concurrent batches cannot exceed the
// per-quiz question limit or land on a published quiz.
func (c *Catalog) AddQuestions(ctx context.Context, quizID string, questions []domain.Question) error {
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEditableQuiz(ctx, tx, quizID); err != nil {
			return err
		}
		existing, err := countQuestions(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if existing+len(questions) > domain.MaxQuestionsPerQuiz {
			return domain.ErrTooManyQuestions
		}

		for _, question := range questions {
			if err := insertQuestion(ctx, tx, question); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Catalog) ReplaceQuestion(ctx context.Context, question domain.Question) error {
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEditableQuiz(ctx, tx, question.QuizID); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model(newQuestionModel(question)).
			Column("title", "question_type").
			WherePK().
			Where("quiz_id = ?", question.QuizID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update question: %w", err)
		}
		if err := expectRow(res, domain.ErrQuestionNotFound); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*answerModel)(nil)).Where("question_id = ?", question.ID).Exec(ctx); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		return insertAnswers(ctx, tx, question)
	})
}

func (c *Catalog) DeleteQuestion(ctx context.Context, quizID, questionID string) error {
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEditableQuiz(ctx, tx, quizID); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*questionModel)(nil)).
			Where("id = ?", questionID).
			Where("quiz_id = ?", quizID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return expectRow(res, domain.ErrQuestionNotFound)
	})
}

// lockEditableQuiz takes the quiz row lock every catalog mutation goes
// through and rejects published quizzes.
func lockEditableQuiz(ctx context.Context, tx bun.Tx, quizID string) error {
	quiz := new(quizModel)
	err := tx.NewSelect().
		Model(quiz).
		Column("id", "is_published").
		Where("qz.id = ?", quizID).
		Where("qz.is_deleted = FALSE").
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrQuizNotFound
	}
	if err != nil {
		return fmt.Errorf("lock quiz: %w", err)
	}
	if quiz.Published {
		return domain.ErrQuizPublished
	}
	return nil
}

func countQuestions(ctx context.Context, tx bun.Tx, quizID string) (int, error) {
	n, err := tx.NewSelect().Model((*questionModel)(nil)).Where("quiz_id = ?", quizID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// Ping reports whether the database is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func insertQuestion(ctx context.Context, tx bun.Tx, question domain.Question) error {
	if _, err := tx.NewInsert().Model(newQuestionModel(question)).Exec(ctx); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return insertAnswers(ctx, tx, question)
}

func insertAnswers(ctx context.Context, tx bun.Tx, question domain.Question) error {
	answers := newAnswerModels(question)
	if len(answers) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
