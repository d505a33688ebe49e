// edulga-mcp — study-material discovery MCP server.
//
// Exposes two MCP tools: text_search, video_search. Runs as HTTP MCP
// server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/edulga/edulga/internal/eduserver"
	"github.com/edulga/edulga/internal/engine"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}

	initEngine()

	port := env.Str("MCP_PORT", "8891")
	slog.Info("starting edulga-mcp",
		slog.String("version", version),
		slog.String("port", port),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "edulga",
		Version: version,
	}, nil)

	eduserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:    "edulga",
		Version: version,
		Port:    port,
		// A video search can hold a response for the full request
		// budget: TranscriptTimeout plus the discovery slack.
		WriteTimeout: 650 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
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
