package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the review tools registered.
func NewMCPServer(svc *ReviewService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "critics",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the reviewer personas available for document reviews, in catalog order.",
	}, svc.ListPersonas)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_document",
		Description: "Review a markdown document with several independent personas running concurrently. Pass content to store a new document or documentId to review a stored one. Returns each persona's comments anchored to 1-based line ranges, and optionally the synthesized findings.",
	}, svc.ReviewDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "synthesize_review",
		Description: "Condense a review's persona comments into deduplicated, categorized and prioritized findings. Stored findings are reused unless force is set.",
	}, svc.SynthesizeReview)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_review",
		Description: "Fetch a stored review's status and comments.",
	}, svc.GetReview)

	return server
}

// RunStdio serves the MCP server over stdin/stdout until ctx is cancelled or
// the client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
