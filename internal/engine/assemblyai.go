package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// assemblyAIBaseURL is a var so tests can point the client at a stub server.
var assemblyAIBaseURL = "https://api.assemblyai.com"

type transcriptJob struct {
	ID     string `json:"id"`
	Status string `json:"status"` // queued | processing | completed | error
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// TranscribeAudio submits the media behind mediaURL for transcription and
// polls until the job completes. Every request waits on the process-wide
// limiter so concurrent enrichments cannot hammer the API; the ctx deadline
// bounds the whole wait.
func TranscribeAudio(ctx context.Context, mediaURL string) (string, error) {
	if cfg.AssemblyAIAPIKey == "" {
		return "", fmt.Errorf("assemblyai: %w: ASSEMBLYAI_API_KEY", ErrNotConfigured)
	}
	metrics.TranscribeRequests.Add(1)

	job, err := submitTranscription(ctx, mediaURL)
	if err != nil {
		metrics.TranscribeErrors.Add(1)
		return "", err
	}

	for {
		if err := transcribeLimiter.Wait(ctx); err != nil {
			metrics.TranscribeErrors.Add(1)
			return "", fmt.Errorf("assemblyai: %w", err)
		}
		job, err = pollTranscription(ctx, job.ID)
		if err != nil {
			metrics.TranscribeErrors.Add(1)
			return "", err
		}
		switch job.Status {
		case "completed":
			return job.Text, nil
		case "error":
			metrics.TranscribeErrors.Add(1)
			return "", fmt.Errorf("assemblyai: transcription failed: %s", job.Error)
		}
		// queued / processing: keep polling
	}
}

func submitTranscription(ctx context.Context, mediaURL string) (*transcriptJob, error) {
	if err := transcribeLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("assemblyai: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"audio_url": mediaURL})
	if err != nil {
		return nil, fmt.Errorf("assemblyai: marshal: %w", err)
	}

	resp, err := RetryHTTP(ctx, "assemblyai", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, assemblyAIBaseURL+"/v2/transcript", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", cfg.AssemblyAIAPIKey)
		req.Header.Set("Content-Type", "application/json")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("assemblyai: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Provider: "assemblyai", Status: resp.StatusCode, Body: string(body)}
	}

	var job transcriptJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("assemblyai: decode submit: %w", err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("assemblyai: submit returned no job id")
	}
	return &job, nil
}

func pollTranscription(ctx context.Context, jobID string) (*transcriptJob, error) {
	resp, err := RetryHTTP(ctx, "assemblyai", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, assemblyAIBaseURL+"/v2/transcript/"+jobID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", cfg.AssemblyAIAPIKey)
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("assemblyai: poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Provider: "assemblyai", Status: resp.StatusCode, Body: string(body)}
	}

	var job transcriptJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("assemblyai: decode poll: %w", err)
	}
	return &job, nil
}
