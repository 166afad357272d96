package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-session-service/internal/config"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
	pgloader "trivia-session-service/internal/infra/postgres"
	redisinfra "trivia-session-service/internal/infra/redis"
	"trivia-session-service/internal/quiz"
	transport "trivia-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	questionTTL := config.TTLDuration(cfg.Quiz.QuestionTTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute)

	var source quiz.QuestionSource
	if redisClient != nil && pool != nil {
		source = redisinfra.NewQuestionRepository(redisClient, pgloader.NewQuestionLoader(pool), questionTTL)
	} else if pool != nil {
		source = memory.NewQuestionRepository(pgloader.NewQuestionLoader(pool), questionTTL)
	} else {
		source = memory.NewQuestionRepository(memory.NewStaticQuestionLoader(sampleBanks()), questionTTL)
	}

	var registry quiz.SessionRegistry
	var leaderboard transport.LeaderboardProvider
	var sink quiz.SummarySink
	if redisClient != nil {
		registry = redisinfra.NewSessionRegistry(redisClient, sessionTTL)
		redisLB := redisinfra.NewLeaderboard(redisClient)
		leaderboard, sink = redisLB, redisLB
	} else {
		registry = memory.NewSessionRegistry()
		memLB := memory.NewLeaderboard()
		leaderboard, sink = memLB, memLB
	}

	service := quiz.NewService(source, registry, sink)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/leaderboard", transport.NewLeaderboardHandler(leaderboard))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks provides a minimal question set so the server is playable
// without Postgres; production deployments load banks from the database.
func sampleBanks() map[string][]domain.Question {
	return map[string][]domain.Question{
		memory.StaticBankKey("general", domain.DifficultyEasy): {
			{
				ID:               "gen-1",
				Text:             "What is the capital of France?",
				Category:         "geography",
				Difficulty:       domain.DifficultyEasy,
				CorrectAnswer:    "Paris",
				IncorrectAnswers: []string{"Lyon", "Marseille", "Toulouse"},
			},
			{
				ID:               "gen-2",
				Text:             "Which planet is known as the Red Planet?",
				Category:         "science",
				Difficulty:       domain.DifficultyEasy,
				CorrectAnswer:    "Mars",
				IncorrectAnswers: []string{"Venus", "Jupiter", "Mercury"},
			},
			{
				ID:               "gen-3",
				Text:             "How many continents are there?",
				Category:         "geography",
				Difficulty:       domain.DifficultyEasy,
				CorrectAnswer:    "Seven",
				IncorrectAnswers: []string{"Five", "Six", "Eight"},
			},
		},
	}
}
