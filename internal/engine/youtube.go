package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// ytDataAPIBase is a var so tests can point the client at a stub server.
var ytDataAPIBase = "https://www.googleapis.com/youtube/v3"

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// extractVideoID pulls the 11-char video ID from any YouTube URL format.
func extractVideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// --- YouTube Data API v3 types (/videos endpoint) ---

type ytVideosResp struct {
	Items []ytVideoItem `json:"items"`
}

type ytVideoItem struct {
	ID             string           `json:"id"`
	Snippet        ytVideoSnippet   `json:"snippet"`
	ContentDetails ytContentDetails `json:"contentDetails"`
}

type ytVideoSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

type ytContentDetails struct {
	Duration string `json:"duration"`
	Caption  string `json:"caption"` // "true"/"false" as a string
}

type videoMetadata struct {
	Title       string
	Channel     string
	Duration    string
	HasCaptions bool
}

// fetchVideoMetadata resolves title, channel, duration and the caption flag
// via the Data API v3. Automatically falls back to the secondary key when
// the primary fails (quota errors come back as 403).
func fetchVideoMetadata(ctx context.Context, videoID string) (*videoMetadata, error) {
	metrics.VideoMetaRequests.Add(1)

	keys := []string{cfg.YouTubeAPIKey}
	if cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		meta, err := doFetchVideoMetadata(ctx, videoID, key)
		if err == nil {
			return meta, nil
		}
		lastErr = err
		slog.Debug("youtube data API key failed, trying fallback", slog.Any("err", err))
	}
	return nil, lastErr
}

func doFetchVideoMetadata(ctx context.Context, videoID, apiKey string) (*videoMetadata, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", videoID)
	params.Set("key", apiKey)

	apiURL := ytDataAPIBase + "/videos?" + params.Encode()
	resp, err := RetryHTTP(ctx, "youtube", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgentBot)
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Provider: "youtube", Status: resp.StatusCode, Body: string(body)}
	}

	var result ytVideosResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode youtube data API: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	item := result.Items[0]
	return &videoMetadata{
		Title:       item.Snippet.Title,
		Channel:     item.Snippet.ChannelTitle,
		Duration:    item.ContentDetails.Duration,
		HasCaptions: item.ContentDetails.Caption == "true",
	}, nil
}

// EnrichVideo resolves metadata and a transcript for a video candidate.
// Only YouTube links are enrichable; candidates from other hosts keep their
// search fields with ProcessingError set. A failed stage never discards what
// earlier stages resolved.
//
// Transcript resolution is two-step: platform captions first, then audio
// transcription when captions are unusable and a transcription key exists.
// The Data API caption flag only covers uploaded tracks, auto-generated ones
// exist regardless, so captions are always attempted.
func EnrichVideo(ctx context.Context, cand Candidate) EnrichedResult {
	out := EnrichedResult{Title: cand.Title, Link: cand.Link, Snippet: cand.Snippet, Source: cand.Source}

	videoID := extractVideoID(cand.Link)
	if videoID == "" {
		out.ProcessingError = ptr("unsupported video platform: " + videoHost(cand.Link))
		return out
	}
	out.VideoID = ptr(videoID)

	var metaErr string
	if cfg.YouTubeAPIKey == "" {
		metaErr = "metadata: no API key"
	} else if meta, err := fetchVideoMetadata(ctx, videoID); err != nil {
		metaErr = "metadata: " + err.Error()
	} else {
		if meta.Title != "" {
			out.Title = meta.Title
		}
		if meta.Channel != "" {
			out.Channel = ptr(meta.Channel)
		}
		if meta.Duration != "" {
			out.Duration = ptr(meta.Duration)
		}
		out.HasCaptions = meta.HasCaptions
	}

	text, capErr := FetchCaptions(ctx, videoID)
	if capErr == nil && text == "" {
		capErr = fmt.Errorf("empty transcript")
	}
	if capErr == nil {
		out.Transcript = ptr(text)
		out.TranscriptSource = TranscriptCaptions
		if metaErr != "" {
			out.ProcessingError = ptr(metaErr)
		}
		return out
	}

	if cfg.AssemblyAIAPIKey != "" {
		slog.Debug("captions failed, falling back to transcription",
			slog.String("id", videoID), slog.Any("err", capErr))
		if fallback, err := TranscribeAudio(ctx, cand.Link); err == nil && fallback != "" {
			out.Transcript = ptr(fallback)
			out.TranscriptSource = TranscriptFallback
			if metaErr != "" {
				out.ProcessingError = ptr(metaErr)
			}
			return out
		} else if err != nil {
			capErr = fmt.Errorf("%s; transcription: %w", capErr.Error(), err)
		}
	}

	stageErrs := "captions: " + capErr.Error()
	if metaErr != "" {
		stageErrs = metaErr + "; " + stageErrs
	}
	out.ProcessingError = ptr(stageErrs)
	return out
}

// videoHost extracts the lowercased host from a candidate link for logging.
func videoHost(link string) string {
	u, err := url.Parse(normalizeScheme(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
