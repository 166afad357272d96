package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-session-service/internal/domain"
)

// QuestionLoader fetches a full question bank from a backing store
// (e.g., Postgres or a remote trivia API).
type QuestionLoader interface {
	LoadBank(ctx context.Context, examTag string, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches question banks with TTL to avoid repeated store
// hits and serves random samples from them.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

// Fetch returns up to amount questions sampled from the bank. When the bank
// holds fewer than amount, the whole bank is returned together with
// domain.ErrShortSupply so the caller can decide to proceed.
func (r *QuestionRepository) Fetch(ctx context.Context, examTag string, difficulty domain.Difficulty, amount int) ([]domain.Question, error) {
	bank, err := r.loadBank(ctx, examTag, difficulty)
	if err != nil {
		return nil, err
	}
	return sampleBank(bank, amount, r.sampler())
}

func (r *QuestionRepository) loadBank(ctx context.Context, examTag string, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := bankKey(examTag, difficulty)
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		bank, err := r.loader.LoadBank(ctx, examTag, difficulty)
		if err != nil {
			return nil, err
		}

		// ttlWithJitter locks r.mu for the rng, so it must run before the
		// cache lock is taken.
		ttl := r.ttlWithJitter()
		r.mu.Lock()
		r.cache[key] = cachedBank{
			questions: bank,
			expiresAt: now.Add(ttl),
		}
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) sampler() func(n int) []int {
	return func(n int) []int {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.rnd.Perm(n)
	}
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func bankKey(examTag string, difficulty domain.Difficulty) string {
	return examTag + ":" + string(difficulty)
}

// sampleBank draws amount questions without replacement. Short banks are
// returned whole, flagged with domain.ErrShortSupply.
func sampleBank(bank []domain.Question, amount int, perm func(int) []int) ([]domain.Question, error) {
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
	order := perm(len(bank))
	out := make([]domain.Question, 0, amount)
	for _, idx := range order[:amount] {
		out = append(out, bank[idx])
	}
	return out, nil
}

// StaticQuestionLoader is a simple loader backed by an in-memory map
// (useful for tests/demos).
type StaticQuestionLoader struct {
	banks map[string][]domain.Question
}

func NewStaticQuestionLoader(banks map[string][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{banks: banks}
}

// StaticBankKey builds the map key NewStaticQuestionLoader expects.
func StaticBankKey(examTag string, difficulty domain.Difficulty) string {
	return bankKey(examTag, difficulty)
}

func (l *StaticQuestionLoader) LoadBank(_ context.Context, examTag string, difficulty domain.Difficulty) ([]domain.Question, error) {
	if bank, ok := l.banks[bankKey(examTag, difficulty)]; ok {
		return bank, nil
	}
	return nil, domain.ErrBankNotFound
}
