package api

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/termlink/pkg/kit"
	"github.com/hazyhaar/termlink/pkg/termindex"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the termlink MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, reg *termindex.Registry, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ep := newEndpoints(reg, nil, kit.Chain(kit.Logging(logger, "mcp"), kit.Recover()))
	registerLookupTerm(srv, ep)
	registerRelatedContent(srv, ep)
	registerLinkText(srv, ep)
	registerListCategories(srv, ep)
}

func registerLookupTerm(srv *server.MCPServer, ep *endpoints) {
	tool := mcp.NewTool("lookup_term",
		mcp.WithDescription("Look up a glossary term by id, with its resolved see-also and prerequisite terms and recommended decks and lessons."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The term id")),
	)

	kit.RegisterMCPTool(srv, tool, ep.term, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		id, _ := req.GetArguments()["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("id is required")
		}
		return &kit.MCPDecodeResult{Request: &termReq{ID: id}}, nil
	})
}

func registerRelatedContent(srv *server.MCPServer, ep *endpoints) {
	tool := mcp.NewTool("related_content",
		mcp.WithDescription("List the visual lessons, question decks and flashcard decks recommended for a term."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The term id")),
	)

	kit.RegisterMCPTool(srv, tool, ep.related, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		id, _ := req.GetArguments()["id"].(string)
		return &kit.MCPDecodeResult{Request: &termReq{ID: id}}, nil
	})
}

func registerLinkText(srv *server.MCPServer, ep *endpoints) {
	tool := mcp.NewTool("link_text",
		mcp.WithDescription("Split prose into plain, **emphasis**, <u>underline</u> and link runs, linking mentions of known glossary terms."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The prose to link")),
		mcp.WithString("current_term_id", mcp.Description("Term the prose belongs to; it is never linked")),
		mcp.WithString("format_only", mcp.Description("\"true\" to split markup without linking")),
	)

	kit.RegisterMCPTool(srv, tool, ep.link, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		text, _ := args["text"].(string)
		current, _ := args["current_term_id"].(string)
		formatOnly, _ := args["format_only"].(string)
		return &kit.MCPDecodeResult{Request: &linkReq{
			Text:          text,
			CurrentTermID: current,
			FormatOnly:    formatOnly == "true",
		}}, nil
	})
}

func registerListCategories(srv *server.MCPServer, ep *endpoints) {
	tool := mcp.NewTool("list_categories",
		mcp.WithDescription("List term categories with their term counts, largest first."),
	)

	kit.RegisterMCPTool(srv, tool, ep.categories, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
