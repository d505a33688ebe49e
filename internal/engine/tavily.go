package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// tavilyBaseURL is a var so tests can point the client at a stub server.
var tavilyBaseURL = "https://api.tavily.com"

type tavilyRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// SearchTavily queries Tavily for text or video hits. Video mode requests
// only whitelisted hosting domains; text mode asks Tavily to exclude video
// hosts. Tavily applies the domain lists loosely, so results are filtered
// again locally before the cfg.MaxLinks cap.
func SearchTavily(ctx context.Context, query string, mode Mode) ([]Candidate, error) {
	if cfg.TavilyAPIKey == "" {
		return nil, fmt.Errorf("tavily: %w: TAVILY_API_KEY", ErrNotConfigured)
	}
	metrics.TavilyRequests.Add(1)

	body := tavilyRequest{
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  cfg.MaxLinks,
	}
	if mode == ModeVideo {
		body.IncludeDomains = videoWhitelist
	} else {
		body.ExcludeDomains = videoDomains
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal: %w", err)
	}

	resp, err := RetryHTTP(ctx, "tavily", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyBaseURL+"/search", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+cfg.TavilyAPIKey)
		req.Header.Set("Content-Type", "application/json")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		metrics.ProviderErrors.Add(1)
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderErrors.Add(1)
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Provider: "tavily", Status: resp.StatusCode, Body: string(b)}
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ProviderErrors.Add(1)
		return nil, fmt.Errorf("tavily: decode: %w", err)
	}

	cands := make([]Candidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		cands = append(cands, Candidate{Title: r.Title, Link: r.URL, Snippet: r.Content, Source: SourceTavily})
	}
	cands = FilterCandidates(cands, mode)
	if len(cands) > cfg.MaxLinks {
		cands = cands[:cfg.MaxLinks]
	}
	return cands, nil
}
