package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// discoverySlack extends the request budget past the enrichment stage
// so the discovery round has headroom of its own.
const discoverySlack = 30 * time.Second

// Run executes one discovery and enrichment pass:
//
//	validate → search both providers in parallel → merge by URL →
//	enrich every candidate concurrently → aggregate
//
// Only configuration problems (and a cancellation that prevented any
// result) surface as errors. Provider and enrichment failures degrade
// into the returned records instead: a failed provider contributes
// nothing, a failed enrichment keeps the candidate's search fields.
func Run(ctx context.Context, req PipelineRequest) ([]EnrichedResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	metrics.PipelineRuns.Add(1)

	var out []EnrichedResult
	err := TrackOperation(ctx, "pipeline:"+string(req.Mode), func(ctx context.Context) error {
		var err error
		out, err = run(ctx, req)
		return err
	})
	return out, err
}

// validateRequest rejects requests the engine could never serve. A single
// missing provider key is not fatal, that provider just contributes
// nothing, but the mode's enricher key and at least one provider key must
// be present for the run to mean anything.
func validateRequest(req PipelineRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}
	if req.Mode != ModeText && req.Mode != ModeVideo {
		return fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if cfg.SerperAPIKey == "" && cfg.TavilyAPIKey == "" {
		return fmt.Errorf("%w: SERPER_API_KEY or TAVILY_API_KEY", ErrNotConfigured)
	}
	if req.Mode == ModeText && cfg.DiffbotAPIKey == "" {
		return fmt.Errorf("%w: DIFFBOT_API_KEY", ErrNotConfigured)
	}
	if req.Mode == ModeVideo && cfg.YouTubeAPIKey == "" {
		return fmt.Errorf("%w: YOUTUBE_API_KEY", ErrNotConfigured)
	}
	return nil
}

func run(ctx context.Context, req PipelineRequest) ([]EnrichedResult, error) {
	query := strings.TrimSpace(req.Query)

	// Upper bound for the whole request. When it elapses, in-flight
	// provider and enrichment calls degrade instead of failing the run.
	budget := cfg.TextExtractTimeout
	if req.Mode == ModeVideo {
		budget = cfg.TranscriptTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget+discoverySlack)
	defer cancel()

	slog.Info("pipeline start",
		slog.String("mode", string(req.Mode)),
		slog.String("query", query),
		slog.String("requester", req.RequesterID))

	// --- Parallel discovery ---
	type searchOut struct {
		provider Source
		cands    []Candidate
		err      error
	}
	channels := make([]chan searchOut, 2)
	searches := []struct {
		provider Source
		fn       func(context.Context, string, Mode) ([]Candidate, error)
	}{
		{SourceSerper, SearchSerper},
		{SourceTavily, SearchTavily},
	}
	for i, s := range searches {
		ch := make(chan searchOut, 1)
		channels[i] = ch
		go func() {
			c, err := s.fn(ctx, query, req.Mode)
			ch <- searchOut{s.provider, c, err}
		}()
	}

	// --- Collect ---
	var serper, tavily []Candidate
	var ctxErr error
collectLoop:
	for _, ch := range channels {
		select {
		case res := <-ch:
			if res.err != nil {
				slog.Warn("provider search failed",
					slog.String("provider", string(res.provider)),
					slog.Any("err", res.err))
				continue
			}
			if res.provider == SourceSerper {
				serper = res.cands
			} else {
				tavily = res.cands
			}
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break collectLoop
		}
	}

	// --- Merge by URL, Serper order first ---
	merged := MergeCandidates(serper, tavily)
	if len(merged) == 0 {
		if ctxErr != nil {
			return nil, ctxErr
		}
		slog.Info("pipeline found nothing", slog.String("query", query))
		return []EnrichedResult{}, nil
	}

	// --- Concurrent enrichment, order-preserving ---
	results := make([]EnrichedResult, len(merged))
	var g errgroup.Group
	g.SetLimit(cfg.MaxEnrichConcurrency)
	for i, cand := range merged {
		g.Go(func() error {
			results[i] = enrichOne(ctx, req.Mode, cand)
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("pipeline done",
		slog.String("mode", string(req.Mode)),
		slog.Int("candidates", len(merged)),
		slog.Int("results", len(results)))
	return results, nil
}

// enrichOne runs the mode's enricher under its per-item budget.
func enrichOne(ctx context.Context, mode Mode, cand Candidate) EnrichedResult {
	if mode == ModeVideo {
		vctx, cancel := context.WithTimeout(ctx, cfg.TranscriptTimeout)
		defer cancel()
		return EnrichVideo(vctx, cand)
	}
	tctx, cancel := context.WithTimeout(ctx, cfg.TextExtractTimeout)
	defer cancel()
	return EnrichText(tctx, cand)
}
