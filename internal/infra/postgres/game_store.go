package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GameStore implements app.GameRepository on top of bun. Transitions lock
// the game row, so answers and skips of one game are serialised.
type GameStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewGameStore(db *bun.DB) *GameStore {
	return &GameStore{db: db, now: time.Now}
}

// CreateGame relies on the (user_id, quiz_id) unique constraint: a losing
// concurrent insert reads back the winner.
func (s *GameStore) CreateGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	_, err := s.db.NewInsert().
		Model(newGameModel(game)).
		On("CONFLICT (user_id, quiz_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Game{}, fmt.Errorf("insert game: %w", err)
	}

	model := new(gameModel)
	err = s.db.NewSelect().
		Model(model).
		Where("g.user_id = ?", game.UserID).
		Where("g.quiz_id = ?", game.QuizID).
		Scan(ctx)
	if err != nil {
		return domain.Game{}, fmt.Errorf("select game: %w", err)
	}
	return model.toDomain(), nil
}

func (s *GameStore) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	model := new(gameModel)
	err := s.db.NewSelect().Model(model).Where("g.id = ?", gameID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("select game: %w", err)
	}
	return model.toDomain(), nil
}

func (s *GameStore) ListGamesByUser(ctx context.Context, userID string) ([]domain.Game, error) {
	return s.listGames(ctx, "g.user_id = ?", userID)
}

func (s *GameStore) ListGamesByQuiz(ctx context.Context, quizID string) ([]domain.Game, error) {
	return s.listGames(ctx, "g.quiz_id = ?", quizID)
}

func (s *GameStore) listGames(ctx context.Context, where string, arg string) ([]domain.Game, error) {
	var models []*gameModel
	err := s.db.NewSelect().
		Model(&models).
		Where(where, arg).
		Order("g.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	games := make([]domain.Game, 0, len(models))
	for _, model := range models {
		games = append(games, model.toDomain())
	}
	return games, nil
}

func (s *GameStore) FinishGame(ctx context.Context, gameID string) error {
	res, err := s.db.NewUpdate().
		Model((*gameModel)(nil)).
		Set("is_finished = TRUE").
		Set("updated_at = ?", s.now()).
		Where("id = ?", gameID).
		Where("is_finished = FALSE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return err
	}
	return domain.ErrGameFinished
}

// EnsureGameQuestion relies on the (game_id, question_id) unique constraint,
// so concurrent calls for the same offset converge on one row.
func (s *GameStore) EnsureGameQuestion(ctx context.Context, gq domain.GameQuestion) (domain.GameQuestion, error) {
	_, err := s.db.NewInsert().
		Model(&gameQuestionModel{
			ID:         gq.ID,
			GameID:     gq.GameID,
			QuestionID: gq.QuestionID,
			State:      string(domain.StatePending),
			CreatedAt:  s.now(),
		}).
		On("CONFLICT (game_id, question_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("insert game question: %w", err)
	}

	model := new(gameQuestionModel)
	err = s.db.NewSelect().
		Model(model).
		Where("gq.game_id = ?", gq.GameID).
		Where("gq.question_id = ?", gq.QuestionID).
		Scan(ctx)
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("select game question: %w", err)
	}
	return model.toDomain(), nil
}

func (s *GameStore) GetGameQuestion(ctx context.Context, gameID, gameQuestionID string) (domain.GameQuestion, error) {
	return getGameQuestion(ctx, s.db, gameID, gameQuestionID)
}

func (s *GameStore) ListGameQuestions(ctx context.Context, gameID string) ([]domain.GameQuestion, error) {
	var models []*gameQuestionModel
	err := s.db.NewSelect().
		Model(&models).
		Where("gq.game_id = ?", gameID).
		Order("gq.created_at ASC", "gq.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select game questions: %w", err)
	}
	served := make([]domain.GameQuestion, 0, len(models))
	for _, model := range models {
		served = append(served, model.toDomain())
	}
	return served, nil
}

// Apply moves one game question out of pending, records the choices and
// advances the game inside a single transaction.
func (s *GameStore) Apply(ctx context.Context, t domain.Transition) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		game := new(gameModel)
		err := tx.NewSelect().
			Model(game).
			Where("g.id = ?", t.GameID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("lock game: %w", err)
		}

		gq, err := getGameQuestion(ctx, tx, t.GameID, t.GameQuestionID)
		if err != nil {
			return err
		}
		if err := gq.CheckPending(); err != nil {
			return err
		}
		if game.Finished {
			return domain.ErrGameFinished
		}

		res, err := tx.NewUpdate().
			Model((*gameQuestionModel)(nil)).
			Set("state = ?", string(t.State)).
			Set("answer_score = ?", t.Score).
			Where("id = ?", gq.ID).
			Where("state = ?", string(domain.StatePending)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update game question: %w", err)
		}
		if err := expectRow(res, domain.ErrAlreadyAnswered); err != nil {
			return err
		}

		if t.State == domain.StateAnswered && len(t.Choices) > 0 {
			answers := make([]*gameAnswerModel, 0, len(t.Choices))
			for _, choice := range t.Choices {
				answers = append(answers, &gameAnswerModel{
					ID:             uuid.NewString(),
					GameQuestionID: gq.ID,
					AnswerID:       choice,
				})
			}
			if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
				return fmt.Errorf("insert game answers: %w", err)
			}
		}

		_, err = tx.NewUpdate().
			Model((*gameModel)(nil)).
			Set("score = score + ?", t.Score).
			Set("question_offset = question_offset + 1").
			Set("updated_at = ?", s.now()).
			Where("id = ?", game.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("advance game: %w", err)
		}
		return nil
	})
}

// ListGameAnswers returns the recorded choices of a game in serve order.
func (s *GameStore) ListGameAnswers(ctx context.Context, gameID string) ([]domain.GameAnswer, error) {
	var models []*gameAnswerModel
	err := s.db.NewSelect().
		Model(&models).
		Join("JOIN game_questions AS gq ON gq.id = ga.game_question_id").
		Where("gq.game_id = ?", gameID).
		Order("gq.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select game answers: %w", err)
	}
	answers := make([]domain.GameAnswer, 0, len(models))
	for _, model := range models {
		answers = append(answers, domain.GameAnswer{
			ID:             model.ID,
			GameQuestionID: model.GameQuestionID,
			Choice:         model.AnswerID,
		})
	}
	return answers, nil
}

func getGameQuestion(ctx context.Context, db bun.IDB, gameID, gameQuestionID string) (domain.GameQuestion, error) {
	model := new(gameQuestionModel)
	err := db.NewSelect().
		Model(model).
		Where("gq.id = ?", gameQuestionID).
		Where("gq.game_id = ?", gameID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GameQuestion{}, domain.ErrGameQuestionNotFound
	}
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("select game question: %w", err)
	}
	return model.toDomain(), nil
}
