package mcp

import "github.com/mark3labs/mcp-go/mcp"

var latestPostTool = mcp.NewTool("latest_post",
	mcp.WithDescription("Get the most recent blog post: title, date and raw content."),
)

var getPostTool = mcp.NewTool("get_post",
	mcp.WithDescription("Get a blog post by id."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Post id"),
	),
)

var listPostsTool = mcp.NewTool("list_posts",
	mcp.WithDescription("List blog posts, newest first, with their ids and dates."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of posts to return (default 20)"),
	),
)

var postBlocksTool = mcp.NewTool("post_blocks",
	mcp.WithDescription("Split a post into its paragraphs and code blocks. Code blocks carry their declared language."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Post id"),
	),
)

var segmentTextTool = mcp.NewTool("segment_text",
	mcp.WithDescription(`Split arbitrary post markup into paragraphs and code blocks. Code is fenced as {code language="go"}...{code}.`),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Post body to segment"),
	),
)
