package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scottfrazer/blog/internal/content"
	"github.com/scottfrazer/blog/internal/posts"
)

const defaultListLimit = 20

func (s *Server) handleLatestPost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.store.Latest(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading latest post: %v", err)), nil
	}
	if p == nil {
		return mcp.NewToolResultText("No posts yet."), nil
	}
	return mcp.NewToolResultText(formatPost(p)), nil
}

func (s *Server) handleGetPost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, result := s.lookup(ctx, request)
	if result != nil {
		return result, nil
	}
	return mcp.NewToolResultText(formatPost(p)), nil
}

func (s *Server) handleListPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	summaries, err := s.store.List(ctx, posts.ListFilter{Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing posts: %v", err)), nil
	}
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No posts yet."), nil
	}

	var b strings.Builder
	for _, sum := range summaries {
		fmt.Fprintf(&b, "- [%d] %s (%s)\n", sum.ID, sum.Title, sum.Date.Format("2006-01-02"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handlePostBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, result := s.lookup(ctx, request)
	if result != nil {
		return result, nil
	}
	return mcp.NewToolResultText(formatBlocks(p.Blocks())), nil
}

func (s *Server) handleSegmentText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	return mcp.NewToolResultText(formatBlocks(content.Segment(text))), nil
}

// lookup loads the post named by the id argument. A non-nil result is the
// tool error to return.
func (s *Server) lookup(ctx context.Context, request mcp.CallToolRequest) (*posts.Post, *mcp.CallToolResult) {
	id, err := request.RequireInt("id")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: id")
	}
	p, err := s.store.Get(ctx, int64(id))
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("loading post %d: %v", id, err))
	}
	if p == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("post %d not found", id))
	}
	return p, nil
}

func formatPost(p *posts.Post) string {
	return fmt.Sprintf("# %s\n\nid: %d\ndate: %s\n\n%s\n", p.Title, p.ID, p.Date.Format("2006-01-02"), p.Content)
}

func formatBlocks(blocks []content.Block) string {
	if len(blocks) == 0 {
		return "(no blocks)"
	}
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		if block.Kind == content.Code {
			fmt.Fprintf(&b, "[%d] code (%s):\n", i+1, block.Language)
		} else {
			fmt.Fprintf(&b, "[%d] text:\n", i+1)
		}
		b.WriteString(block.Text)
		b.WriteString("\n")
	}
	return b.String()
}
