package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-session-service/internal/domain"
)

// QuestionLoader fetches a full question bank from a backing store
// (e.g., Postgres or a remote trivia API).
type QuestionLoader interface {
	LoadBank(ctx context.Context, examTag string, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches question banks in Redis (one JSON value per
// exam-tag/difficulty key) and falls back to a loader on cache miss.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Fetch returns up to amount questions sampled from the cached bank. A bank
// shorter than amount is returned whole with domain.ErrShortSupply.
func (r *QuestionRepository) Fetch(ctx context.Context, examTag string, difficulty domain.Difficulty, amount int) ([]domain.Question, error) {
	bank, err := r.loadBank(ctx, examTag, difficulty)
	if err != nil {
		return nil, err
	}
	return r.sample(bank, amount)
}

func (r *QuestionRepository) loadBank(ctx context.Context, examTag string, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := r.bankKey(examTag, difficulty)

	if bank, ok := r.cachedBank(ctx, key); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cachedBank(ctx, key); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, examTag, difficulty)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(bank)
		if err != nil {
			return nil, fmt.Errorf("marshal bank: %w", err)
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cachedBank(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var bank []domain.Question
	if err := json.Unmarshal(raw, &bank); err != nil {
		return nil, false
	}
	return bank, true
}

func (r *QuestionRepository) sample(bank []domain.Question, amount int) ([]domain.Question, error) {
	if amount <= 0 || len(bank) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if len(bank) <= amount {
		out := append([]domain.Question(nil), bank...)
		if len(bank) < amount {
			return out, domain.ErrShortSupply
		}
		return out, nil
	}
	r.mu.Lock()
	order := r.rnd.Perm(len(bank))
	r.mu.Unlock()
	out := make([]domain.Question, 0, amount)
	for _, idx := range order[:amount] {
		out = append(out, bank[idx])
	}
	return out, nil
}

func (r *QuestionRepository) bankKey(examTag string, difficulty domain.Difficulty) string {
	return "questions:" + examTag + ":" + string(difficulty)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
