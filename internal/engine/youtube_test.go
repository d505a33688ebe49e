package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"},
		{"https://vimeo.com/12345", ""},
		{"https://www.youtube.com/watch?v=short", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractVideoID(tt.url); got != tt.want {
			t.Errorf("extractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFetchVideoMetadataKeyFallback(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		keys = append(keys, key)
		if key == "primary" {
			http.Error(w, `{"error":{"code":403,"message":"quotaExceeded"}}`, http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(ytVideosResp{Items: []ytVideoItem{{
			ID:             "dQw4w9WgXcQ",
			Snippet:        ytVideoSnippet{Title: "Essence of calculus", ChannelTitle: "3Blue1Brown"},
			ContentDetails: ytContentDetails{Duration: "PT18M40S", Caption: "true"},
		}}})
	}))
	defer srv.Close()

	old := ytDataAPIBase
	ytDataAPIBase = srv.URL
	defer func() { ytDataAPIBase = old }()

	Init(Config{YouTubeAPIKey: "primary", YouTubeAPIKeyFallback: "secondary"})

	meta, err := fetchVideoMetadata(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("fetchVideoMetadata: %v", err)
	}
	if len(keys) != 2 || keys[0] != "primary" || keys[1] != "secondary" {
		t.Errorf("keys tried = %v", keys)
	}
	if meta.Title != "Essence of calculus" || meta.Channel != "3Blue1Brown" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Duration != "PT18M40S" || !meta.HasCaptions {
		t.Errorf("meta = %+v", meta)
	}
}

func TestFetchVideoMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ytVideosResp{})
	}))
	defer srv.Close()

	old := ytDataAPIBase
	ytDataAPIBase = srv.URL
	defer func() { ytDataAPIBase = old }()

	Init(Config{YouTubeAPIKey: "k"})

	_, err := fetchVideoMetadata(context.Background(), "gone4567890")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestEnrichVideoUnsupportedHost(t *testing.T) {
	Init(Config{})

	cand := Candidate{Title: "Clip", Link: "https://vimeo.com/12345", Snippet: "s", Source: SourceTavily}
	got := EnrichVideo(context.Background(), cand)

	if got.VideoID != nil {
		t.Errorf("VideoID = %v, want nil", got.VideoID)
	}
	if got.ProcessingError == nil || !strings.Contains(*got.ProcessingError, "unsupported video platform") {
		t.Fatalf("ProcessingError = %v", got.ProcessingError)
	}
	if got.Title != "Clip" || got.Snippet != "s" {
		t.Errorf("search fields not preserved: %+v", got)
	}
}

func TestEnrichVideoCaptionsPath(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ytVideosResp{Items: []ytVideoItem{{
			ID:             "dQw4w9WgXcQ",
			Snippet:        ytVideoSnippet{Title: "Essence of calculus", ChannelTitle: "3Blue1Brown"},
			ContentDetails: ytContentDetails{Duration: "PT18M40S", Caption: "true"},
		}}})
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<!DOCTYPE html><html><body><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext?v=dQw4w9WgXcQ","languageCode":"en","kind":""}]}},"playabilityStatus":{"status":"OK"}};</script></body></html>`, srv.URL)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><transcript><text start="0.0" dur="2.0">Welcome to the</text><text start="2.0" dur="2.0">calculus lecture</text></transcript>`)
	})

	oldData, oldWatch := ytDataAPIBase, ytWatchBaseURL
	ytDataAPIBase, ytWatchBaseURL = srv.URL, srv.URL
	defer func() { ytDataAPIBase, ytWatchBaseURL = oldData, oldWatch }()

	Init(Config{YouTubeAPIKey: "k"})

	cand := Candidate{Title: "Search Title", Link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Source: SourceSerper}
	got := EnrichVideo(context.Background(), cand)

	if got.ProcessingError != nil {
		t.Fatalf("ProcessingError = %q", *got.ProcessingError)
	}
	if got.VideoID == nil || *got.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %v", got.VideoID)
	}
	if got.Title != "Essence of calculus" {
		t.Errorf("Title = %q, want the platform title", got.Title)
	}
	if got.Channel == nil || *got.Channel != "3Blue1Brown" {
		t.Errorf("Channel = %v", got.Channel)
	}
	if got.Duration == nil || *got.Duration != "PT18M40S" {
		t.Errorf("Duration = %v", got.Duration)
	}
	if !got.HasCaptions {
		t.Error("HasCaptions = false, want true")
	}
	if got.Transcript == nil || *got.Transcript != "Welcome to the calculus lecture" {
		t.Fatalf("Transcript = %v", got.Transcript)
	}
	if got.TranscriptSource != TranscriptCaptions {
		t.Errorf("TranscriptSource = %q", got.TranscriptSource)
	}
}

func TestEnrichVideoTranscriptionFallback(t *testing.T) {
	var polls atomic.Int64
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ytVideosResp{Items: []ytVideoItem{{
			ID:             "dQw4w9WgXcQ",
			Snippet:        ytVideoSnippet{Title: "No captions here", ChannelTitle: "Chan"},
			ContentDetails: ytContentDetails{Duration: "PT3M", Caption: "false"},
		}}})
	})
	// No /watch or /youtubei handlers: both caption tiers 404.
	mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transcriptJob{ID: "job-1", Status: "queued"})
	})
	mux.HandleFunc("/v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			json.NewEncoder(w).Encode(transcriptJob{ID: "job-1", Status: "processing"})
			return
		}
		json.NewEncoder(w).Encode(transcriptJob{ID: "job-1", Status: "completed", Text: "Transcribed speech."})
	})

	oldData, oldWatch, oldTube, oldAAI := ytDataAPIBase, ytWatchBaseURL, ytInnertubeBaseURL, assemblyAIBaseURL
	ytDataAPIBase, ytWatchBaseURL, assemblyAIBaseURL = srv.URL, srv.URL, srv.URL
	ytInnertubeBaseURL = srv.URL + "/youtubei/v1"
	defer func() {
		ytDataAPIBase, ytWatchBaseURL, ytInnertubeBaseURL, assemblyAIBaseURL = oldData, oldWatch, oldTube, oldAAI
	}()

	Init(Config{
		YouTubeAPIKey:       "k",
		AssemblyAIAPIKey:    "aai",
		TranscribePollDelay: time.Millisecond,
	})

	cand := Candidate{Title: "T", Link: "https://youtu.be/dQw4w9WgXcQ", Source: SourceSerper}
	got := EnrichVideo(context.Background(), cand)

	if got.Transcript == nil || *got.Transcript != "Transcribed speech." {
		t.Fatalf("Transcript = %v", got.Transcript)
	}
	if got.TranscriptSource != TranscriptFallback {
		t.Errorf("TranscriptSource = %q", got.TranscriptSource)
	}
	if got.ProcessingError != nil {
		t.Errorf("ProcessingError = %q, want nil when fallback succeeded", *got.ProcessingError)
	}
	if got.Channel == nil || *got.Channel != "Chan" {
		t.Errorf("Channel = %v, metadata should survive caption failure", got.Channel)
	}
	if polls.Load() != 2 {
		t.Errorf("polls = %d, want 2", polls.Load())
	}
}

func TestEnrichVideoAllTranscriptStagesFail(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ytVideosResp{Items: []ytVideoItem{{
			ID:      "dQw4w9WgXcQ",
			Snippet: ytVideoSnippet{ChannelTitle: "Chan"},
		}}})
	})

	oldData, oldWatch, oldTube := ytDataAPIBase, ytWatchBaseURL, ytInnertubeBaseURL
	ytDataAPIBase, ytWatchBaseURL = srv.URL, srv.URL
	ytInnertubeBaseURL = srv.URL + "/youtubei/v1"
	defer func() { ytDataAPIBase, ytWatchBaseURL, ytInnertubeBaseURL = oldData, oldWatch, oldTube }()

	Init(Config{YouTubeAPIKey: "k"}) // no transcription key

	got := EnrichVideo(context.Background(), Candidate{Title: "T", Link: "https://youtu.be/dQw4w9WgXcQ"})

	if got.Transcript != nil {
		t.Errorf("Transcript = %v, want nil", got.Transcript)
	}
	if got.ProcessingError == nil || !strings.Contains(*got.ProcessingError, "captions:") {
		t.Fatalf("ProcessingError = %v", got.ProcessingError)
	}
	if got.Channel == nil || *got.Channel != "Chan" {
		t.Errorf("Channel = %v, metadata should be kept", got.Channel)
	}
	if got.VideoID == nil || *got.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %v", got.VideoID)
	}
}
