package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"trivia-session-service/internal/domain"
)

const defaultLeaderboardLimit = 10

// LeaderboardProvider serves ordered scoreboard snapshots.
type LeaderboardProvider interface {
	Snapshot(ctx context.Context, limit int) (domain.Leaderboard, error)
}

type LeaderboardHandler struct {
	provider LeaderboardProvider
}

func NewLeaderboardHandler(provider LeaderboardProvider) *LeaderboardHandler {
	return &LeaderboardHandler{provider: provider}
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	snapshot, err := h.provider.Snapshot(r.Context(), limit)
	if err != nil {
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
