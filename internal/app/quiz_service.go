package app

import (
	"context"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnswerInput is an authored answer.
type AnswerInput struct {
	Value     string `json:"value"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionInput is an authored question.
type QuestionInput struct {
	Title   string              `json:"title"`
	Type    domain.QuestionType `json:"type"`
	Answers []AnswerInput       `json:"answers"`
}

// QuestionPatch carries the fields of a question update; nil fields are kept.
type QuestionPatch struct {
	Title   *string              `json:"title"`
	Type    *domain.QuestionType `json:"type"`
	Answers []AnswerInput        `json:"answers"`
}

// QuizService contains the owner-scoped authoring use cases.
type QuizService struct {
	catalog CatalogStore
	games   GameRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewQuizService(catalog CatalogStore, games GameRepository, opts ...Option) *QuizService {
	o := buildOptions(opts)
	return &QuizService{catalog: catalog, games: games, logger: o.logger, now: o.now}
}

// CreateQuiz stores a new unpublished quiz owned by the caller.
func (s *QuizService) CreateQuiz(ctx context.Context, owner domain.User, title string) (domain.Quiz, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return domain.Quiz{}, err
	}
	now := s.now()
	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.catalog.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.logger.Info("quiz created", zap.String("quiz_id", quiz.ID), zap.String("owner_id", owner.ID))
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, owner domain.User, quizID string) (domain.Quiz, error) {
	return s.ownedQuiz(ctx, owner, quizID)
}

func (s *QuizService) ListQuizzes(ctx context.Context, owner domain.User) ([]domain.Quiz, error) {
	return s.catalog.ListQuizzes(ctx, owner.ID)
}

// UpdateQuiz renames an unpublished quiz.
func (s *QuizService) UpdateQuiz(ctx context.Context, owner domain.User, quizID, title string) error {
	quiz, err := s.editableQuiz(ctx, owner, quizID)
	if err != nil {
		return err
	}
	if title, err = domain.NormalizeTitle(title); err != nil {
		return err
	}
	return s.catalog.RenameQuiz(ctx, quiz.ID, title, s.now())
}

// PublishQuiz freezes the quiz and makes it playable.
func (s *QuizService) PublishQuiz(ctx context.Context, owner domain.User, quizID string) error {
	quiz, err := s.ownedQuiz(ctx, owner, quizID)
	if err != nil {
		return err
	}
	if quiz.Published {
		return domain.ErrQuizPublished
	}
	if err := s.catalog.PublishQuiz(ctx, quiz.ID, s.now()); err != nil {
		return err
	}
	s.logger.Info("quiz published", zap.String("quiz_id", quiz.ID))
	return nil
}

// DeleteQuiz soft deletes the quiz; existing games keep their records.
func (s *QuizService) DeleteQuiz(ctx context.Context, owner domain.User, quizID string) error {
	quiz, err := s.ownedQuiz(ctx, owner, quizID)
	if err != nil {
		return err
	}
	return s.catalog.DeleteQuiz(ctx, quiz.ID, s.now())
}

// AddQuestions appends questions after the existing ones.
func (s *QuizService) AddQuestions(ctx context.Context, owner domain.User, quizID string, inputs []QuestionInput) ([]domain.Question, error) {
	quiz, err := s.editableQuiz(ctx, owner, quizID)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if len(quiz.Questions)+len(inputs) > domain.MaxQuestionsPerQuiz {
		return nil, domain.ErrTooManyQuestions
	}

	var order int64
	for _, existing := range quiz.Questions {
		if existing.Order > order {
			order = existing.Order
		}
	}

	questions := make([]domain.Question, 0, len(inputs))
	for _, input := range inputs {
		order++
		question := domain.Question{
			ID:      uuid.NewString(),
			QuizID:  quiz.ID,
			Title:   input.Title,
			Type:    input.Type,
			Order:   order,
			Answers: newAnswers(input.Answers),
		}
		if question.Title, err = domain.NormalizeTitle(question.Title); err != nil {
			return nil, err
		}
		if err := domain.ValidateQuestion(question); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	if err := s.catalog.AddQuestions(ctx, quiz.ID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ListQuestions is the owner view of a quiz's questions, correctness included.
func (s *QuizService) ListQuestions(ctx context.Context, owner domain.User, quizID string) ([]domain.Question, error) {
	quiz, err := s.ownedQuiz(ctx, owner, quizID)
	if err != nil {
		return nil, err
	}
	return quiz.Questions, nil
}

// UpdateQuestion applies patch and revalidates the resulting question.
func (s *QuizService) UpdateQuestion(ctx context.Context, owner domain.User, quizID, questionID string, patch QuestionPatch) (domain.Question, error) {
	quiz, err := s.editableQuiz(ctx, owner, quizID)
	if err != nil {
		return domain.Question{}, err
	}
	question, ok := quiz.Question(questionID)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	if patch.Title != nil {
		if question.Title, err = domain.NormalizeTitle(*patch.Title); err != nil {
			return domain.Question{}, err
		}
	}
	if patch.Type != nil {
		question.Type = *patch.Type
	}
	if patch.Answers != nil {
		question.Answers = newAnswers(patch.Answers)
	}
	if err := domain.ValidateQuestion(question); err != nil {
		return domain.Question{}, err
	}

	if err := s.catalog.ReplaceQuestion(ctx, question); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, owner domain.User, quizID, questionID string) error {
	quiz, err := s.editableQuiz(ctx, owner, quizID)
	if err != nil {
		return err
	}
	if _, ok := quiz.Question(questionID); !ok {
		return domain.ErrQuestionNotFound
	}
	return s.catalog.DeleteQuestion(ctx, quiz.ID, questionID)
}

// QuizGames lists the games played on the owner's quiz.
func (s *QuizService) QuizGames(ctx context.Context, owner domain.User, quizID string) ([]domain.Game, error) {
	quiz, err := s.ownedQuiz(ctx, owner, quizID)
	if err != nil {
		return nil, err
	}
	return s.games.ListGamesByQuiz(ctx, quiz.ID)
}

// QuizGameDetails reports the per-question breakdown of one game played on
// the owner's quiz, finished or not.
func (s *QuizService) QuizGameDetails(ctx context.Context, owner domain.User, quizID, gameID string) (domain.Results, error) {
	quiz, err := s.ownedQuiz(ctx, owner, quizID)
	if err != nil {
		return domain.Results{}, err
	}
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Results{}, err
	}
	if game.QuizID != quiz.ID {
		return domain.Results{}, domain.ErrGameNotFound
	}
	return summarize(ctx, s.games, staticQuiz(quiz), game)
}

func (s *QuizService) ownedQuiz(ctx context.Context, owner domain.User, quizID string) (domain.Quiz, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Deleted || quiz.OwnerID != owner.ID {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizService) editableQuiz(ctx context.Context, owner domain.User, quizID string) (domain.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, owner, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Published {
		return domain.Quiz{}, domain.ErrQuizPublished
	}
	return quiz, nil
}

func newAnswers(inputs []AnswerInput) []domain.Answer {
	answers := make([]domain.Answer, 0, len(inputs))
	for _, input := range inputs {
		answers = append(answers, domain.Answer{
			ID:        uuid.NewString(),
			Value:     input.Value,
			IsCorrect: input.IsCorrect,
		})
	}
	return answers
}

// staticQuiz serves an already loaded quiz as a QuizRepository.
type staticQuiz domain.Quiz

func (q staticQuiz) GetQuiz(context.Context, string) (domain.Quiz, error) {
	return domain.Quiz(q), nil
}
