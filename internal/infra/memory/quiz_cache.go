package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches a published quiz with its ordered questions from the
// backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCache keeps published quizzes in process memory with a TTL. Published
// quizzes never change, so a cached copy stays valid until it expires.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	group  singleflight.Group

	mu      sync.RWMutex
	rnd     *rand.Rand
	entries map[string]cacheEntry
}

type cacheEntry struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]cacheEntry),
	}
}

// GetQuiz serves quizID from memory, loading it once per expiry across
// concurrent callers.
func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(quizID); ok {
		return quiz, nil
	}

	v, err, _ := c.group.Do(quizID, func() (interface{}, error) {
		if quiz, ok := c.lookup(quizID); ok {
			return quiz, nil
		}
		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(v.(domain.Quiz)), nil
}

func (c *QuizCache) lookup(quizID string) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return cloneQuiz(entry.quiz), true
}

func (c *QuizCache) store(quiz domain.Quiz) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[quiz.ID] = cacheEntry{
		quiz:      cloneQuiz(quiz),
		expiresAt: c.clock().Add(c.ttlWithJitter()),
	}
}

// ttlWithJitter spreads expirations by up to 10% of the ttl; callers hold mu.
func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return c.ttl + time.Duration(c.rnd.Int63n(int64(c.ttl)/10+1))
}
