package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PipelineRuns       atomic.Int64
	SerperRequests     atomic.Int64
	TavilyRequests     atomic.Int64
	ProviderErrors     atomic.Int64
	ExtractRequests    atomic.Int64
	ExtractFallbacks   atomic.Int64
	VideoMetaRequests  atomic.Int64
	CaptionRequests    atomic.Int64
	TranscribeRequests atomic.Int64
	TranscribeErrors   atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"cache_hits":          hits,
		"cache_misses":        misses,
		"pipeline_runs":       metrics.PipelineRuns.Load(),
		"serper_requests":     metrics.SerperRequests.Load(),
		"tavily_requests":     metrics.TavilyRequests.Load(),
		"provider_errors":     metrics.ProviderErrors.Load(),
		"extract_requests":    metrics.ExtractRequests.Load(),
		"extract_fallbacks":   metrics.ExtractFallbacks.Load(),
		"video_meta_requests": metrics.VideoMetaRequests.Load(),
		"caption_requests":    metrics.CaptionRequests.Load(),
		"transcribe_requests": metrics.TranscribeRequests.Load(),
		"transcribe_errors":   metrics.TranscribeErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"pipeline_runs", "cache_hits", "cache_misses",
		"serper_requests", "tavily_requests", "provider_errors",
		"extract_requests", "extract_fallbacks",
		"video_meta_requests", "caption_requests",
		"transcribe_requests", "transcribe_errors",
		"llm_calls", "llm_errors",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the agent package.
func IncrLLMCalls()  { metrics.LLMCalls.Add(1) }
func IncrLLMErrors() { metrics.LLMErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
