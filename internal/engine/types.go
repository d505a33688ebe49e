package engine

// Mode selects what kind of sources a pipeline request is after.
type Mode string

const (
	// ModeText discovers and extracts article-like web pages.
	ModeText Mode = "text"
	// ModeVideo discovers videos on supported platforms and resolves
	// metadata plus a transcript.
	ModeVideo Mode = "video"
)

// Source identifies which discovery provider produced a candidate.
type Source string

const (
	SourceSerper Source = "serper"
	SourceTavily Source = "tavily"
)

// TranscriptSource records how a video transcript was obtained.
type TranscriptSource string

const (
	// TranscriptCaptions means the platform's own caption track was fetched.
	TranscriptCaptions TranscriptSource = "captions"
	// TranscriptFallback means the audio was transcribed by the
	// transcription service because no usable captions existed.
	TranscriptFallback TranscriptSource = "transcription_fallback"
)

// Candidate is a single discovery hit before enrichment.
// Link is the identity key; candidates with an empty link never reach
// the merger.
type Candidate struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Source  Source `json:"source"`
}

// EnrichedResult is one candidate after enrichment. The text group
// (FullText, Author, PublishedDate, Tags) is populated in text mode,
// the video group (VideoID .. ProcessingError) in video mode, never
// both. Pointer fields distinguish "not resolved" from "empty".
type EnrichedResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Source  Source `json:"source"`

	// Text enrichment. FullText nil means extraction failed or the
	// article had no extractable body; consumers check FullText != nil.
	FullText      *string  `json:"fullText,omitempty"`
	Author        *string  `json:"author,omitempty"`
	PublishedDate *string  `json:"publishedDate,omitempty"`
	Tags          []string `json:"tags,omitempty"`

	// Video enrichment. Duration is the platform's ISO-8601 string
	// (e.g. "PT46M22S"). ProcessingError carries a short diagnostic
	// when a stage failed; earlier-resolved fields are kept.
	VideoID          *string          `json:"videoId,omitempty"`
	Channel          *string          `json:"channel,omitempty"`
	Duration         *string          `json:"duration,omitempty"`
	HasCaptions      bool             `json:"hasCaptions,omitempty"`
	Transcript       *string          `json:"transcript,omitempty"`
	TranscriptSource TranscriptSource `json:"transcriptSource,omitempty"`
	ProcessingError  *string          `json:"processingError,omitempty"`
}

// PipelineRequest is the single input to Run. RequesterID is an opaque
// correlation token carried into logs; it plays no part in discovery or
// enrichment.
type PipelineRequest struct {
	Query       string `json:"query"`
	Mode        Mode   `json:"mode"`
	RequesterID string `json:"requesterId,omitempty"`
}

// ptr returns a pointer to v. Enrichers use it to fill nullable fields.
func ptr[T any](v T) *T { return &v }
