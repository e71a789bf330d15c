package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/bersena911/quizapi/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches a published quiz with its ordered questions from the
// backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCache keeps published quizzes in Redis so every API replica shares one
// copy. Each quiz is stored as JSON under quiz:{quizID} with a jittered TTL.
// Redis failures degrade to loading from the backing store.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration, logger *zap.Logger) *QuizCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, quizID); ok {
		return quiz, nil
	}

	v, err, _ := c.group.Do(quizID, func() (interface{}, error) {
		// Re-check in case another replica filled it.
		if quiz, ok := c.lookup(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

func (c *QuizCache) lookup(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, quizKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("quiz cache read failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		c.logger.Warn("quiz cache entry corrupt", zap.String("quiz_id", quizID), zap.Error(err))
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) store(ctx context.Context, quiz domain.Quiz) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		c.logger.Warn("quiz cache encode failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, quizKey(quiz.ID), raw, c.ttlWithJitter()).Err(); err != nil {
		c.logger.Warn("quiz cache write failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
	}
}

// Ping reports whether Redis is reachable.
func (c *QuizCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func quizKey(quizID string) string {
	return "quiz:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// add up to 10% jitter to spread expirations
	return c.ttl + time.Duration(c.rnd.Int63n(int64(c.ttl)/10+1))
}
