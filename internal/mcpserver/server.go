// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Haven FS tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/havenfs/internal/apperr"
	"github.com/starford/havenfs/internal/docservice"
)

// FormatURI is the resource URI of the format contract.
const FormatURI = "haven://format"

// Server wraps the MCP server with Haven FS tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Haven FS tools registered.
func New(svc *docservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Haven FS",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_document",
		mcp.WithDescription("Parse Haven FS description text without storing it. "+
			"Returns nodes, tags, libraries, branch, chunk map and diagnostics as JSON."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Description text")),
	), s.parseDocument)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a description from the workspace and return its parsed form."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. photos/2024.havenfs)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new description at the specified path. "+
			"Content MUST follow the Haven FS format. Read the contract first via "+
			"the get_format_contract tool or the "+FormatURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new document (must end with .havenfs)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Description text following the format contract")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List indexed description files."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of documents (default 50)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("search_nodes",
		mcp.WithDescription("Search file, directory and tag names across all documents."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNodes)

	s.mcp.AddTool(mcp.NewTool("get_diagnostics",
		mcp.WithDescription("Return the parse diagnostics of a workspace document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document")),
	), s.getDiagnostics)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the Haven FS description format contract. "+
			"Call this before creating documents to ensure correct structure."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Haven FS Format",
			mcp.WithResourceDescription("Description format that all workspace documents follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func errorResult(path string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("document already exists: %s", path))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) parseDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.ParseText(ctx, content))
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return errorResult(path, err), nil
	}
	return jsonResult(doc)
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.CreateDocument(ctx, path, []byte(content))
	if err != nil {
		return errorResult(path, err), nil
	}
	if n := len(doc.Result.Diagnostics); n > 0 {
		return mcp.NewToolResultText(fmt.Sprintf("created: %s (%d diagnostics)", path, n)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 50)
	docs, _, err := s.svc.ListDocuments(ctx, limit, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) searchNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchNodes(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func (s *Server) getDiagnostics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return errorResult(path, err), nil
	}
	if len(doc.Result.Diagnostics) == 0 {
		return mcp.NewToolResultText("no diagnostics"), nil
	}
	return jsonResult(doc.Result.Diagnostics)
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
