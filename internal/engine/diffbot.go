package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// diffbotBaseURL is a var so tests can point the client at a stub server.
var diffbotBaseURL = "https://api.diffbot.com"

type diffbotTag struct {
	Label string `json:"label"`
}

type diffbotObject struct {
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	HTML   string       `json:"html"`
	Author string       `json:"author"`
	Date   string       `json:"date"`
	Tags   []diffbotTag `json:"tags"`
}

type diffbotResponse struct {
	Objects []diffbotObject `json:"objects"`
}

// EnrichText resolves the full article behind a text candidate via the
// Diffbot Article API. It never returns an error: any failure degrades to
// the search-level fields so one dead page cannot sink the batch. Text-mode
// results always carry a non-nil Tags slice.
func EnrichText(ctx context.Context, cand Candidate) EnrichedResult {
	base := EnrichedResult{Title: cand.Title, Link: cand.Link, Snippet: cand.Snippet, Source: cand.Source}

	if cfg.DiffbotAPIKey == "" {
		return textFallback(base, "no API key")
	}
	metrics.ExtractRequests.Add(1)

	q := url.Values{}
	q.Set("token", cfg.DiffbotAPIKey)
	q.Set("url", cand.Link)
	q.Set("discussion", "false")
	q.Set("timeout", fmt.Sprintf("%d", cfg.TextExtractTimeout.Milliseconds()))
	endpoint := diffbotBaseURL + "/v3/article?" + q.Encode()

	resp, err := RetryHTTP(ctx, "diffbot", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return textFallback(base, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return textFallback(base, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	var parsed diffbotResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return textFallback(base, "decode: "+err.Error())
	}
	if len(parsed.Objects) == 0 {
		return textFallback(base, "empty objects")
	}

	obj := parsed.Objects[0]
	text := obj.Text
	if text == "" && obj.HTML != "" {
		// Some pages come back with only rendered HTML. Markdown keeps
		// the structure readable for the LLM downstream.
		if md, convErr := htmltomarkdown.ConvertString(obj.HTML); convErr == nil {
			text = md
		}
	}
	if text == "" {
		return textFallback(base, "no article body")
	}

	out := base
	out.FullText = ptr(text)
	if obj.Title != "" {
		out.Title = obj.Title
	}
	if obj.Author != "" {
		out.Author = ptr(obj.Author)
	}
	if obj.Date != "" {
		out.PublishedDate = ptr(obj.Date)
	}
	out.Tags = make([]string, 0, len(obj.Tags))
	for _, tag := range obj.Tags {
		if tag.Label != "" {
			out.Tags = append(out.Tags, tag.Label)
		}
	}
	return out
}

// textFallback returns the search-level view of a candidate when
// extraction cannot produce an article body.
func textFallback(base EnrichedResult, reason string) EnrichedResult {
	metrics.ExtractFallbacks.Add(1)
	slog.Debug("text extraction fell back to snippet",
		slog.String("link", base.Link),
		slog.String("reason", reason))
	base.Tags = []string{}
	return base
}
