package app

import (
	"context"
	"errors"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/bersena911/quizapi/internal/engine"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameService runs the game state machine: start, serve the next question,
// answer, skip, finish and report results.
type GameService struct {
	games    GameRepository
	catalog  CatalogStore
	quizzes  QuizRepository
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures optional collaborators of the services.
type Option func(*options)

type options struct {
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// WithObserver reports lifecycle signals to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(opts *options) { opts.now = now }
}

func buildOptions(opts []Option) options {
	o := options{observer: nopObserver{}, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewGameService wires the state machine. catalog is consulted for the
// authoritative published/deleted check on start; quizzes serves the
// (possibly cached) ordered questions during play.
func NewGameService(games GameRepository, catalog CatalogStore, quizzes QuizRepository, opts ...Option) *GameService {
	o := buildOptions(opts)
	return &GameService{
		games:    games,
		catalog:  catalog,
		quizzes:  quizzes,
		observer: o.observer,
		logger:   o.logger,
		now:      o.now,
	}
}

// Start begins a game of a published quiz. Starting a game that is already in
// progress returns its id; a finished game cannot be replayed.
func (s *GameService) Start(ctx context.Context, user domain.User, quizID string) (string, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	if quiz.Deleted || !quiz.Published {
		return "", domain.ErrQuizNotFound
	}

	now := s.now()
	candidate := domain.Game{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		QuizID:    quiz.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	game, err := s.games.CreateGame(ctx, candidate)
	if err != nil {
		return "", err
	}
	if game.Finished {
		return "", domain.ErrAlreadyPlayed
	}
	if game.ID == candidate.ID {
		s.observer.GameStarted()
		s.logger.Info("game started", zap.String("game_id", game.ID), zap.String("quiz_id", quiz.ID), zap.String("user_id", user.ID))
	}
	return game.ID, nil
}

// Game returns one of the caller's games.
func (s *GameService) Game(ctx context.Context, user domain.User, gameID string) (domain.Game, error) {
	return s.ownedGame(ctx, user, gameID)
}

// ListGames returns the caller's games with their quiz titles.
func (s *GameService) ListGames(ctx context.Context, user domain.User) ([]domain.GameSummary, error) {
	games, err := s.games.ListGamesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.GameSummary, 0, len(games))
	for _, game := range games {
		summary := domain.GameSummary{
			ID:       game.ID,
			QuizID:   game.QuizID,
			Finished: game.Finished,
			Score:    game.Score,
		}
		quiz, err := s.quizzes.GetQuiz(ctx, game.QuizID)
		switch {
		case err == nil:
			summary.QuizTitle = quiz.Title
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Next serves the question at the game's offset. Repeated calls before an
// answer or skip return the same game question. Once the quiz is exhausted
// the game is marked finished and ErrGameFinished is returned.
func (s *GameService) Next(ctx context.Context, user domain.User, gameID string) (domain.NextQuestion, error) {
	game, err := s.ownedGame(ctx, user, gameID)
	if err != nil {
		return domain.NextQuestion{}, err
	}
	if game.Finished {
		return domain.NextQuestion{}, domain.ErrGameFinished
	}

	quiz, err := s.quizzes.GetQuiz(ctx, game.QuizID)
	if err != nil {
		return domain.NextQuestion{}, err
	}
	question, ok := engine.Next(quiz, game.Offset)
	if !ok {
		// A concurrent exhaust may have finished it first.
		if err := s.games.FinishGame(ctx, game.ID); err != nil {
			return domain.NextQuestion{}, err
		}
		s.observer.GameFinished()
		s.logger.Info("game finished", zap.String("game_id", game.ID), zap.Float64("score", game.Score))
		return domain.NextQuestion{}, domain.ErrGameFinished
	}

	gq, err := s.games.EnsureGameQuestion(ctx, domain.GameQuestion{
		ID:         uuid.NewString(),
		GameID:     game.ID,
		QuestionID: question.ID,
		State:      domain.StatePending,
	})
	if err != nil {
		return domain.NextQuestion{}, err
	}
	return engine.Present(gq.ID, question), nil
}

// Answer scores a choice set for a pending game question and applies it.
func (s *GameService) Answer(ctx context.Context, user domain.User, gameID, gameQuestionID string, choices []string) error {
	game, gq, err := s.pendingQuestion(ctx, user, gameID, gameQuestionID)
	if err != nil {
		return err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, game.QuizID)
	if err != nil {
		return err
	}
	question, ok := quiz.Question(gq.QuestionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if len(choices) == 0 {
		return domain.ErrNoChoices
	}
	if question.Type == domain.SingleAnswer && len(choices) > 1 {
		return domain.ErrTypeMismatch
	}

	score, err := engine.Score(choices, question.Answers, question.Type)
	if err != nil {
		if errors.Is(err, domain.ErrLogic) {
			s.logger.Error("scoring failed", zap.String("question_id", question.ID), zap.String("type", string(question.Type)), zap.Error(err))
		}
		return err
	}

	if err := s.games.Apply(ctx, domain.Transition{
		GameID:         game.ID,
		GameQuestionID: gq.ID,
		State:          domain.StateAnswered,
		Score:          score,
		Choices:        choices,
	}); err != nil {
		return err
	}
	s.observer.QuestionAnswered(score)
	return nil
}

// Skip moves a pending game question to skipped with a zero score.
func (s *GameService) Skip(ctx context.Context, user domain.User, gameID, gameQuestionID string) error {
	game, gq, err := s.pendingQuestion(ctx, user, gameID, gameQuestionID)
	if err != nil {
		return err
	}
	if err := s.games.Apply(ctx, domain.Transition{
		GameID:         game.ID,
		GameQuestionID: gq.ID,
		State:          domain.StateSkipped,
	}); err != nil {
		return err
	}
	s.observer.QuestionSkipped()
	return nil
}

// Finish ends a game in progress before the quiz is exhausted.
func (s *GameService) Finish(ctx context.Context, user domain.User, gameID string) error {
	game, err := s.ownedGame(ctx, user, gameID)
	if err != nil {
		return err
	}
	if game.Finished {
		return domain.ErrGameFinished
	}
	if err := s.games.FinishGame(ctx, game.ID); err != nil {
		return err
	}
	s.observer.GameFinished()
	s.logger.Info("game finished early", zap.String("game_id", game.ID))
	return nil
}

// Results summarises a finished game.
func (s *GameService) Results(ctx context.Context, user domain.User, gameID string) (domain.Results, error) {
	game, err := s.ownedGame(ctx, user, gameID)
	if err != nil {
		return domain.Results{}, err
	}
	if !game.Finished {
		return domain.Results{}, domain.ErrGameNotFinished
	}
	return summarize(ctx, s.games, s.quizzes, game)
}

func summarize(ctx context.Context, games GameRepository, quizzes QuizRepository, game domain.Game) (domain.Results, error) {
	quiz, err := quizzes.GetQuiz(ctx, game.QuizID)
	if err != nil {
		return domain.Results{}, err
	}
	served, err := games.ListGameQuestions(ctx, game.ID)
	if err != nil {
		return domain.Results{}, err
	}
	answers, err := games.ListGameAnswers(ctx, game.ID)
	if err != nil {
		return domain.Results{}, err
	}
	return engine.Summarize(game, quiz, served, answers), nil
}

// ownedGame hides games of other users behind ErrGameNotFound.
func (s *GameService) ownedGame(ctx context.Context, user domain.User, gameID string) (domain.Game, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if game.UserID != user.ID {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *GameService) pendingQuestion(ctx context.Context, user domain.User, gameID, gameQuestionID string) (domain.Game, domain.GameQuestion, error) {
	game, err := s.ownedGame(ctx, user, gameID)
	if err != nil {
		return domain.Game{}, domain.GameQuestion{}, err
	}
	gq, err := s.games.GetGameQuestion(ctx, game.ID, gameQuestionID)
	if err != nil {
		return domain.Game{}, domain.GameQuestion{}, err
	}
	if err := gq.CheckPending(); err != nil {
		return domain.Game{}, domain.GameQuestion{}, err
	}
	if game.Finished {
		return domain.Game{}, domain.GameQuestion{}, domain.ErrGameFinished
	}
	return game, gq, nil
}
