package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/google/uuid"
)

// GameStore is an in-memory implementation of app.GameRepository. A single
// mutex serialises every mutation, which makes Apply atomic.
type GameStore struct {
	mu        sync.RWMutex
	now       func() time.Time
	games     map[string]domain.Game
	byPlayer  map[playerKey]string
	questions map[string]domain.GameQuestion
	served    map[string][]string
	answers   map[string][]domain.GameAnswer
}

type playerKey struct {
	userID string
	quizID string
}

func NewGameStore() *GameStore {
	return &GameStore{
		now:       time.Now,
		games:     make(map[string]domain.Game),
		byPlayer:  make(map[playerKey]string),
		questions: make(map[string]domain.GameQuestion),
		served:    make(map[string][]string),
		answers:   make(map[string][]domain.GameAnswer),
	}
}

func (s *GameStore) CreateGame(_ context.Context, game domain.Game) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := playerKey{userID: game.UserID, quizID: game.QuizID}
	if id, ok := s.byPlayer[key]; ok {
		return s.games[id], nil
	}
	s.games[game.ID] = game
	s.byPlayer[key] = game.ID
	return game, nil
}

func (s *GameStore) GetGame(_ context.Context, gameID string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[gameID]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *GameStore) ListGamesByUser(_ context.Context, userID string) ([]domain.Game, error) {
	return s.filterGames(func(g domain.Game) bool { return g.UserID == userID }), nil
}

func (s *GameStore) ListGamesByQuiz(_ context.Context, quizID string) ([]domain.Game, error) {
	return s.filterGames(func(g domain.Game) bool { return g.QuizID == quizID }), nil
}

func (s *GameStore) filterGames(keep func(domain.Game) bool) []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]domain.Game, 0)
	for _, game := range s.games {
		if keep(game) {
			games = append(games, game)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games
}

func (s *GameStore) FinishGame(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return domain.ErrGameNotFound
	}
	if game.Finished {
		return domain.ErrGameFinished
	}
	game.Finished = true
	game.UpdatedAt = s.now()
	s.games[gameID] = game
	return nil
}

func (s *GameStore) EnsureGameQuestion(_ context.Context, gq domain.GameQuestion) (domain.GameQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gq.GameID]; !ok {
		return domain.GameQuestion{}, domain.ErrGameNotFound
	}
	for _, id := range s.served[gq.GameID] {
		if existing := s.questions[id]; existing.QuestionID == gq.QuestionID {
			return existing, nil
		}
	}
	gq.State = domain.StatePending
	gq.AnswerScore = 0
	s.questions[gq.ID] = gq
	s.served[gq.GameID] = append(s.served[gq.GameID], gq.ID)
	return gq, nil
}

func (s *GameStore) GetGameQuestion(_ context.Context, gameID, gameQuestionID string) (domain.GameQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gq, ok := s.questions[gameQuestionID]
	if !ok || gq.GameID != gameID {
		return domain.GameQuestion{}, domain.ErrGameQuestionNotFound
	}
	return gq, nil
}

// ListGameQuestions returns the game questions in the order they were served.
func (s *GameStore) ListGameQuestions(_ context.Context, gameID string) ([]domain.GameQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	served := make([]domain.GameQuestion, 0, len(s.served[gameID]))
	for _, id := range s.served[gameID] {
		served = append(served, s.questions[id])
	}
	return served, nil
}

// Apply re-checks every precondition under the lock, so of two racing
// transitions on one game question exactly one succeeds.
func (s *GameStore) Apply(_ context.Context, t domain.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[t.GameID]
	if !ok {
		return domain.ErrGameNotFound
	}
	gq, ok := s.questions[t.GameQuestionID]
	if !ok || gq.GameID != game.ID {
		return domain.ErrGameQuestionNotFound
	}
	if err := gq.CheckPending(); err != nil {
		return err
	}
	if game.Finished {
		return domain.ErrGameFinished
	}

	gq.State = t.State
	gq.AnswerScore = t.Score
	s.questions[gq.ID] = gq
	if t.State == domain.StateAnswered {
		for _, choice := range t.Choices {
			s.answers[gq.ID] = append(s.answers[gq.ID], domain.GameAnswer{
				ID:             uuid.NewString(),
				GameQuestionID: gq.ID,
				Choice:         choice,
			})
		}
	}

	game.Score += t.Score
	game.Offset++
	game.UpdatedAt = s.now()
	s.games[game.ID] = game
	return nil
}

// ListGameAnswers returns the recorded choices of a game in serve order.
func (s *GameStore) ListGameAnswers(_ context.Context, gameID string) ([]domain.GameAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var answers []domain.GameAnswer
	for _, gqID := range s.served[gameID] {
		answers = append(answers, s.answers[gqID]...)
	}
	return answers, nil
}
