package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// Leaderboard keeps each user's best recorded summary in memory and serves
// ordered snapshots.
type Leaderboard struct {
	now func() time.Time

	mu   sync.RWMutex
	best map[string]domain.Summary
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		now:  time.Now,
		best: make(map[string]domain.Summary),
	}
}

// RecordSummary keeps the summary if it beats the user's previous best score.
func (l *Leaderboard) RecordSummary(_ context.Context, summary domain.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.best[summary.User]
	if !ok || summary.FinalScore > prev.FinalScore {
		l.best[summary.User] = summary
	}
	return nil
}

// Snapshot returns up to limit entries ordered by score descending, breaking
// ties by who reached the score earlier, then by name. A non-positive limit
// returns everything.
func (l *Leaderboard) Snapshot(_ context.Context, limit int) (domain.Leaderboard, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(l.best))
	for _, summary := range l.best {
		entries = append(entries, domain.LeaderboardEntry{
			User:  summary.User,
			Score: summary.FinalScore,
			Level: summary.Level,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		si := l.best[entries[i].User]
		sj := l.best[entries[j].User]
		if !si.FinishedAt.Equal(sj.FinishedAt) {
			return si.FinishedAt.Before(sj.FinishedAt)
		}
		return entries[i].User < entries[j].User
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return domain.Leaderboard{
		Entries:   entries,
		UpdatedAt: l.now(),
	}, nil
}
