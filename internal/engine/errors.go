package engine

import (
	"errors"
	"fmt"
)

// Configuration errors. These are the only errors Run returns to its
// caller; every downstream failure degrades into the result records
// instead (empty provider contribution, fallback enrichment).
var (
	// ErrEmptyQuery is returned when the request query is blank.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrInvalidMode is returned when the request mode is neither
	// ModeText nor ModeVideo.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNotConfigured is returned when a credential required to
	// produce any meaningful result for the request is missing.
	ErrNotConfigured = errors.New("missing credential")
)

// APIError reports a non-success response from an external API.
type APIError struct {
	Provider string // serper, tavily, diffbot, youtube, assemblyai
	Status   int
	Body     string // first bytes of the response body
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.Status, e.Body)
}

// IsConfigError reports whether err belongs to the configuration class
// that Run propagates to its caller.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrNotConfigured)
}
