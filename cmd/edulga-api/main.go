// edulga-api — student roster, tutor personas and study-material search
// over REST.
//
// Serves the /students, /agent and /search route families plus /metrics
// and /healthz. Students live in SQLite by default, in Postgres when
// DATABASE_URL is set.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/edulga/edulga/internal/agent"
	"github.com/edulga/edulga/internal/engine"
	"github.com/edulga/edulga/internal/server"
	"github.com/edulga/edulga/internal/students"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}

	initEngine()

	store, err := openStore()
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	if err := students.Seed(context.Background(), store); err != nil {
		slog.Warn("roster seed failed", slog.Any("error", err))
	}

	tutor := agent.New(newLLMClient(), store, env.Str("CHAT_DIR", "chat_histories"))

	port := env.Str("API_PORT", "8080")
	slog.Info("starting edulga-api",
		slog.String("version", version),
		slog.String("port", port),
	)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     server.New(store, tutor).Handler(),
		ReadTimeout: 30 * time.Second,
		// A video search can hold a response for the full request
		// budget: TranscriptTimeout plus the discovery slack.
		WriteTimeout: 650 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initEngine() {
	engine.Init(engine.Config{
		SerperAPIKey:          env.Str("SERPER_API_KEY", ""),
		TavilyAPIKey:          env.Str("TAVILY_API_KEY", ""),
		DiffbotAPIKey:         env.Str("DIFFBOT_API_KEY", ""),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		AssemblyAIAPIKey:      env.Str("ASSEMBLYAI_API_KEY", ""),
		MaxLinks:              env.Int("MAX_LINKS", 10),
		MaxEnrichConcurrency:  env.Int("MAX_ENRICH_CONCURRENCY", 8),
		TextExtractTimeout:    env.Duration("TEXT_EXTRACT_TIMEOUT", 60*time.Second),
		TranscriptTimeout:     env.Duration("TRANSCRIPT_TIMEOUT", 600*time.Second),
		TranscribePollDelay:   env.Duration("TRANSCRIBE_POLL_DELAY", 5*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	})

	engine.InitCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 15*time.Minute),
		env.Int("CACHE_MAX_ENTRIES", 1000),
		env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)
}

func openStore() (students.Store, error) {
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		slog.Info("using postgres student store")
		return students.ConnectPostgres(context.Background(), dbURL)
	}
	path := env.Str("SQLITE_PATH", "data/edulga.db")
	slog.Info("using sqlite student store", slog.String("path", path))
	return students.OpenSQLite(path)
}

// newLLMClient builds the tutor's model client, nil when no key is
// configured. The agent degrades to 503s on the persona routes while
// the rest of the API keeps working.
func newLLMClient() *llm.Client {
	apiKey := env.Str("LLM_API_KEY", "")
	if apiKey == "" {
		slog.Warn("LLM_API_KEY not set, tutor personas disabled")
		return nil
	}
	return llm.NewClient(
		env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		apiKey,
		env.Str("LLM_MODEL", "gemini-2.5-flash"),
		llm.WithFallbackKeys(env.List("LLM_API_KEY_FALLBACKS", "")),
		llm.WithMaxTokens(env.Int("LLM_MAX_TOKENS", 16384)),
		llm.WithTemperature(env.Float("LLM_TEMPERATURE", 0.7)),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
}
