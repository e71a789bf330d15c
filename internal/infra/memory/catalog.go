package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/bersena911/quizapi/internal/engine"
)

// Catalog is an in-memory implementation of app.CatalogStore. It also acts
// as a QuizLoader for QuizCache.
type Catalog struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewCatalog() *Catalog {
	return &Catalog{quizzes: make(map[string]domain.Quiz)}
}

func (c *Catalog) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (c *Catalog) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quiz, ok := c.quizzes[quizID]
	if !ok || quiz.Deleted {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

// LoadQuiz returns a published quiz. Soft deleted quizzes are still served
// so games already in progress can finish.
func (c *Catalog) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quiz, ok := c.quizzes[quizID]
	if !ok || !quiz.Published {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (c *Catalog) ListQuizzes(_ context.Context, ownerID string) ([]domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0)
	for _, quiz := range c.quizzes {
		if quiz.OwnerID == ownerID && !quiz.Deleted {
			quizzes = append(quizzes, cloneQuiz(quiz))
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

func (c *Catalog) RenameQuiz(_ context.Context, quizID, title string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz, err := c.editable(quizID)
	if err != nil {
		return err
	}
	quiz.Title = title
	quiz.UpdatedAt = at
	c.quizzes[quizID] = quiz
	return nil
}

func (c *Catalog) PublishQuiz(_ context.Context, quizID string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz, err := c.editable(quizID)
	if err != nil {
		return err
	}
	if len(quiz.Questions) == 0 {
		return domain.ErrPublishEmpty
	}
	quiz.Published = true
	quiz.UpdatedAt = at
	c.quizzes[quizID] = quiz
	return nil
}

func (c *Catalog) DeleteQuiz(_ context.Context, quizID string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz, ok := c.quizzes[quizID]
	if !ok || quiz.Deleted {
		return domain.ErrQuizNotFound
	}
	quiz.Deleted = true
	quiz.UpdatedAt = at
	c.quizzes[quizID] = quiz
	return nil
}

func (c *Catalog) AddQuestions(_ context.Context, quizID string, questions []domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz, err := c.editable(quizID)
	if err != nil {
		return err
	}
	if len(quiz.Questions)+len(questions) > domain.MaxQuestionsPerQuiz {
		return domain.ErrTooManyQuestions
	}
	for _, question := range questions {
		quiz.Questions = append(quiz.Questions, cloneQuestion(question))
	}
	quiz.Questions = engine.Ordered(quiz.Questions)
	c.quizzes[quizID] = quiz
	return nil
}

func (c *Catalog) ReplaceQuestion(_ context.Context, question domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz, err := c.editable(question.QuizID)
	if err != nil {
		return err
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == question.ID {
			quiz.Questions[i] = cloneQuestion(question)
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

func (c *Catalog) DeleteQuestion(_ context.Context, quizID, questionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	quiz, err := c.editable(quizID)
	if err != nil {
		return err
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			quiz.Questions = append(quiz.Questions[:i:i], quiz.Questions[i+1:]...)
			c.quizzes[quizID] = quiz
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

// editable returns the stored quiz if it can still change. Callers hold c.mu.
func (c *Catalog) editable(quizID string) (domain.Quiz, error) {
	quiz, ok := c.quizzes[quizID]
	if !ok || quiz.Deleted {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if quiz.Published {
		return domain.Quiz{}, domain.ErrQuizPublished
	}
	return quiz, nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	if quiz.Questions == nil {
		return quiz
	}
	questions := make([]domain.Question, len(quiz.Questions))
	for i, question := range quiz.Questions {
		questions[i] = cloneQuestion(question)
	}
	quiz.Questions = questions
	return quiz
}

func cloneQuestion(question domain.Question) domain.Question {
	question.Answers = append([]domain.Answer(nil), question.Answers...)
	return question
}
