package memory

import (
	"context"
	"testing"
	"time"

	"trivia-session-service/internal/domain"
)

func TestLeaderboardOrdersByScoreThenFinishTime(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_ = lb.RecordSummary(ctx, domain.Summary{User: "alice", FinalScore: 50, FinishedAt: base.Add(time.Minute)})
	_ = lb.RecordSummary(ctx, domain.Summary{User: "bob", FinalScore: 90, FinishedAt: base})
	_ = lb.RecordSummary(ctx, domain.Summary{User: "carol", FinalScore: 50, FinishedAt: base})

	snapshot, err := lb.Snapshot(ctx, 0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snapshot.Entries))
	}
	if snapshot.Entries[0].User != "bob" {
		t.Fatalf("expected bob leading, got %+v", snapshot.Entries)
	}
	// carol reached 50 earlier than alice.
	if snapshot.Entries[1].User != "carol" || snapshot.Entries[2].User != "alice" {
		t.Fatalf("tie-break by finish time failed: %+v", snapshot.Entries)
	}
}

func TestLeaderboardKeepsBestScore(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	_ = lb.RecordSummary(ctx, domain.Summary{User: "alice", FinalScore: 80})
	_ = lb.RecordSummary(ctx, domain.Summary{User: "alice", FinalScore: 40})

	snapshot, err := lb.Snapshot(ctx, 0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Score != 80 {
		t.Fatalf("expected alice's best score 80, got %+v", snapshot.Entries)
	}
}

func TestLeaderboardSnapshotHonorsLimit(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	_ = lb.RecordSummary(ctx, domain.Summary{User: "alice", FinalScore: 80})
	_ = lb.RecordSummary(ctx, domain.Summary{User: "bob", FinalScore: 60})
	_ = lb.RecordSummary(ctx, domain.Summary{User: "carol", FinalScore: 40})

	snapshot, err := lb.Snapshot(ctx, 2)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Entries) != 2 || snapshot.Entries[0].User != "alice" || snapshot.Entries[1].User != "bob" {
		t.Fatalf("expected top two entries, got %+v", snapshot.Entries)
	}
}
