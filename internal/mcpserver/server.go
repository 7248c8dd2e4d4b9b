// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes wikimark rendering and link tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/wikimark/internal/apperr"
	"github.com/starford/wikimark/internal/renderservice"
)

const syntaxURI = "wikimark://syntax"

// Server wraps the MCP server with wikimark tools.
type Server struct {
	mcp *server.MCPServer
	svc *renderservice.Service
}

// New creates a new MCP server with all wikimark tools registered.
func New(svc *renderservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"wikimark",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_note",
		mcp.WithDescription("Render a vault note to HTML. Returns JSON with the HTML, title, tags, "+
			"outgoing links (with resolution) and backlinks."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.renderNote)

	s.mcp.AddTool(mcp.NewTool("render_markdown",
		mcp.WithDescription("Render Obsidian-flavoured Markdown to HTML. Wiki links and embeds "+
			"resolve against the vault. See get_syntax_guide for the supported syntax."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown source")),
	), s.renderMarkdown)

	s.mcp.AddTool(mcp.NewTool("resolve_link",
		mcp.WithDescription("Resolve a wiki link target such as 'Page#Heading' to a vault file and URL."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Wiki target without brackets")),
	), s.resolveLink)

	s.mcp.AddTool(mcp.NewTool("list_unresolved_links",
		mcp.WithDescription("List wiki links and embeds whose target matches no vault file."),
	), s.listUnresolved)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all links that resolve to the specified vault file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List rendered pages with their URLs, optionally filtered by tag."),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50, max 500)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through page content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("get_syntax_guide",
		mcp.WithDescription("Returns the Obsidian syntax wikimark renders: wiki links, embeds, "+
			"highlights and callouts."),
	), s.getSyntaxGuide)

	// Resource: syntax guide.
	s.mcp.AddResource(
		mcp.NewResource(syntaxURI, "Syntax Guide",
			mcp.WithResourceDescription("Obsidian Markdown syntax supported by wikimark."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func optionalInt(req mcp.CallToolRequest, key string) int {
	if v, err := req.RequireInt(key); err == nil {
		return v
	}
	return 0
}

func (s *Server) renderNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.RenderPage(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page)
}

func (s *Server) renderMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.RenderSource(ctx, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(page.HTML), nil
}

func (s *Server) resolveLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Resolve(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) listUnresolved(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	links, err := s.svc.Unresolved(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(links) == 0 {
		return mcp.NewToolResultText("no unresolved links"), nil
	}
	lines := make([]string, len(links))
	for i, l := range links {
		lines[i] = l.Source + ": " + l.Raw
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	lines := make([]string, len(bl))
	for i, l := range bl {
		lines[i] = l.Source + ": " + l.Raw
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}
	items, total, err := s.svc.ListPages(ctx, optionalInt(req, "limit"), optionalInt(req, "offset"), tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"pages": items, "total": total})
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getSyntaxGuide(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SyntaxGuide), nil
}

func (s *Server) readSyntaxResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      syntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxGuide,
		},
	}, nil
}
