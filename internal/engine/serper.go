package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// serperBaseURL is a var so tests can point the client at a stub server.
var serperBaseURL = "https://google.serper.dev"

type serperRequest struct {
	Q  string `json:"q"`
	HL string `json:"hl"`
}

type serperRow struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	Organic []serperRow `json:"organic"`
	Videos  []serperRow `json:"videos"`
}

// serperEndpoint maps the request mode to Serper's endpoint segment.
func serperEndpoint(mode Mode) string {
	if mode == ModeVideo {
		return "videos"
	}
	return "search"
}

// SearchSerper queries Serper for text or video hits, filters them
// through the domain tables, and caps the list at cfg.MaxLinks.
// Ordering follows the API's relevance order.
func SearchSerper(ctx context.Context, query string, mode Mode) ([]Candidate, error) {
	if cfg.SerperAPIKey == "" {
		return nil, fmt.Errorf("serper: %w: SERPER_API_KEY", ErrNotConfigured)
	}
	metrics.SerperRequests.Add(1)

	payload, err := json.Marshal(serperRequest{Q: query, HL: "en"})
	if err != nil {
		return nil, fmt.Errorf("serper: marshal: %w", err)
	}

	endpoint := serperBaseURL + "/" + serperEndpoint(mode)
	resp, err := RetryHTTP(ctx, "serper", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-KEY", cfg.SerperAPIKey)
		req.Header.Set("Content-Type", "application/json")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		metrics.ProviderErrors.Add(1)
		return nil, fmt.Errorf("serper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.Add(1)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Provider: "serper", Status: resp.StatusCode, Body: string(body)}
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ProviderErrors.Add(1)
		return nil, fmt.Errorf("serper: decode: %w", err)
	}

	rows := parsed.Organic
	if mode == ModeVideo {
		rows = parsed.Videos
	}

	cands := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		if r.Link == "" {
			continue
		}
		cands = append(cands, Candidate{Title: r.Title, Link: r.Link, Snippet: r.Snippet, Source: SourceSerper})
	}
	cands = FilterCandidates(cands, mode)
	if len(cands) > cfg.MaxLinks {
		cands = cands[:cfg.MaxLinks]
	}
	return cands, nil
}
