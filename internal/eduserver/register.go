// Package eduserver registers the study-material discovery tools on an
// MCP server: text_search and video_search.
package eduserver

import (
	"context"
	"fmt"

	"github.com/edulga/edulga/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers both discovery tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerTextSearch(server)
	registerVideoSearch(server)
}

func registerTextSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "text_search",
		Description: "Search the web for article-style study material and extract the full text of every hit. Returns structured JSON per result: title, link, snippet, extracted text, author, publish date and tags.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TextSearchInput) (*mcp.CallToolResult, engine.SearchOutput, error) {
		if input.Query == "" {
			return nil, engine.SearchOutput{}, fmt.Errorf("query is required")
		}
		cacheKey := engine.CacheKey("search", string(engine.ModeText), input.Query)
		if out, ok := engine.CacheGet(ctx, cacheKey); ok {
			return nil, out, nil
		}
		results, err := engine.Run(ctx, engine.PipelineRequest{
			Query:       input.Query,
			Mode:        engine.ModeText,
			RequesterID: input.StudentID,
		})
		if err != nil {
			return nil, engine.SearchOutput{}, err
		}
		out := engine.SearchOutput{
			Query:   input.Query,
			Mode:    engine.ModeText,
			Count:   len(results),
			Results: results,
		}
		engine.CacheSet(ctx, cacheKey, out)
		return nil, out, nil
	})
}

func registerVideoSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_search",
		Description: "Search for lecture and tutorial videos on YouTube, Vimeo, Dailymotion and other supported platforms, resolve metadata and produce a transcript (captions when published, speech-to-text otherwise). Returns structured JSON per result: title, link, channel, duration, transcript and transcript source.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoSearchInput) (*mcp.CallToolResult, engine.SearchOutput, error) {
		if input.Query == "" {
			return nil, engine.SearchOutput{}, fmt.Errorf("query is required")
		}
		cacheKey := engine.CacheKey("search", string(engine.ModeVideo), input.Query)
		if out, ok := engine.CacheGet(ctx, cacheKey); ok {
			return nil, out, nil
		}
		results, err := engine.Run(ctx, engine.PipelineRequest{
			Query:       input.Query,
			Mode:        engine.ModeVideo,
			RequesterID: input.StudentID,
		})
		if err != nil {
			return nil, engine.SearchOutput{}, err
		}
		out := engine.SearchOutput{
			Query:   input.Query,
			Mode:    engine.ModeVideo,
			Count:   len(results),
			Results: results,
		}
		engine.CacheSet(ctx, cacheKey, out)
		return nil, out, nil
	})
}
