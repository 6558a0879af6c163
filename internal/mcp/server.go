// Package mcp exposes the blog's posts to agents over the Model Context
// Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/scottfrazer/blog/internal/posts"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes read-only post tools.
type Server struct {
	store *posts.Store
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server reading posts from store.
func NewServer(store *posts.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"blog",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(latestPostTool, s.handleLatestPost)
	s.mcp.AddTool(getPostTool, s.handleGetPost)
	s.mcp.AddTool(listPostsTool, s.handleListPosts)
	s.mcp.AddTool(postBlocksTool, s.handlePostBlocks)
	s.mcp.AddTool(segmentTextTool, s.handleSegmentText)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
