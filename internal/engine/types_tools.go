package engine

// MCP tool input/output types. The jsonschema tags become the tool
// parameter descriptions shown to the model.

// TextSearchInput is the input for the text_search tool.
type TextSearchInput struct {
	Query     string `json:"query" jsonschema:"Search keywords for article-style study material (e.g. graph algorithms, SQL window functions)"`
	StudentID string `json:"student_id,omitempty" jsonschema:"Optional student UUID, carried into logs for correlation"`
}

// VideoSearchInput is the input for the video_search tool.
type VideoSearchInput struct {
	Query     string `json:"query" jsonschema:"Search keywords for lecture or tutorial videos (e.g. B-tree insertion walkthrough)"`
	StudentID string `json:"student_id,omitempty" jsonschema:"Optional student UUID, carried into logs for correlation"`
}

// SearchOutput is the shared result envelope of both search tools.
type SearchOutput struct {
	Query   string           `json:"query"`
	Mode    Mode             `json:"mode"`
	Count   int              `json:"count"`
	Results []EnrichedResult `json:"results"`
}
