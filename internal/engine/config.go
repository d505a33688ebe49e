package engine

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SerperAPIKey          string
	TavilyAPIKey          string
	DiffbotAPIKey         string
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	AssemblyAIAPIKey      string

	MaxLinks             int           // per-provider candidate cap before merge
	MaxEnrichConcurrency int           // simultaneous enrichment calls
	TextExtractTimeout   time.Duration // budget for one article extraction
	TranscriptTimeout    time.Duration // budget for one video transcript
	TranscribePollDelay  time.Duration // spacing between transcription API requests

	HTTPClient *http.Client
}

var cfg Config

// transcribeLimiter spaces out transcription API calls process-wide.
// Rebuilt by Init from TranscribePollDelay.
var transcribeLimiter *rate.Limiter

// Init initializes the engine with the given configuration.
// Zero-value fields fall back to the defaults below so tests can Init
// with a partial Config.
func Init(c Config) {
	if c.MaxLinks <= 0 {
		c.MaxLinks = 10
	}
	if c.MaxEnrichConcurrency <= 0 {
		c.MaxEnrichConcurrency = 8
	}
	if c.TextExtractTimeout <= 0 {
		c.TextExtractTimeout = 60 * time.Second
	}
	if c.TranscriptTimeout <= 0 {
		c.TranscriptTimeout = 600 * time.Second
	}
	if c.TranscribePollDelay <= 0 {
		c.TranscribePollDelay = 5 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		}
	}
	cfg = c
	transcribeLimiter = rate.NewLimiter(rate.Every(c.TranscribePollDelay), 1)
}
