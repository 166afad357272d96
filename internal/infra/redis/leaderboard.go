package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
)

const (
	scoreboardKey   = "leaderboard:score"
	playerKeyPrefix = "leaderboard:player:"
)

// Leaderboard persists session summaries in Redis: best score per user in a
// sorted set, latest summary fields in a hash per player.
type Leaderboard struct {
	client *redis.Client
	now    func() time.Time
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, now: time.Now}
}

// RecordSummary stores the summary; the sorted-set score only ever moves up.
func (l *Leaderboard) RecordSummary(ctx context.Context, summary domain.Summary) error {
	current, err := l.client.ZScore(ctx, scoreboardKey, summary.User).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read score: %w", err)
	}
	if err == nil && int(current) >= summary.FinalScore {
		return nil
	}

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, scoreboardKey, redis.Z{Score: float64(summary.FinalScore), Member: summary.User})
	pipe.HSet(ctx, playerKeyPrefix+summary.User,
		"score", summary.FinalScore,
		"xp", summary.XPGained,
		"level", summary.Level,
		"correct", summary.CorrectCount,
		"wrong", summary.WrongCount,
		"accuracy", summary.AccuracyPercent,
		"tier", string(summary.Tier),
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record summary: %w", err)
	}
	return nil
}

// Snapshot returns the top entries ordered by score descending.
func (l *Leaderboard) Snapshot(ctx context.Context, limit int) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = 10
	}
	ranked, err := l.client.ZRevRangeWithScores(ctx, scoreboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("read scoreboard: %w", err)
	}

	// One pipelined round trip for the per-player levels, mirroring how
	// RecordSummary batches its writes.
	pipe := l.client.Pipeline()
	levels := make([]*redis.StringCmd, len(ranked))
	for i, z := range ranked {
		user, _ := z.Member.(string)
		levels[i] = pipe.HGet(ctx, playerKeyPrefix+user, "level")
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return domain.Leaderboard{}, fmt.Errorf("read player levels: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, z := range ranked {
		user, _ := z.Member.(string)
		entry := domain.LeaderboardEntry{User: user, Score: int(z.Score)}
		if lvl, err := levels[i].Result(); err == nil {
			if parsed, err := strconv.Atoi(lvl); err == nil {
				entry.Level = parsed
			}
		}
		entries = append(entries, entry)
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: l.now()}, nil
}
