package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/doclens/regionfit/internal/config"
	"github.com/doclens/regionfit/internal/refine"
	"github.com/doclens/regionfit/internal/service"
)

// Server represents the MCP server instance
type Server struct {
	config        *config.Config
	regionService *service.Service
	mcpServer     *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, regionService *service.Service) (*Server, error) {
	if regionService == nil {
		return nil, fmt.Errorf("regionService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:        cfg,
		regionService: regionService,
		mcpServer:     mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register region correct file tool
	regionCorrectFileTool := mcp.NewTool(
		"region_correct_file",
		mcp.WithDescription("Correct proposed page regions against a PDF page's text layer and extract each region's text in reading order"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, relative to the configured directory or absolute within it"),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("1-based page number"),
		),
		mcp.WithString("regions",
			mcp.Required(),
			mcp.Description(`JSON array of proposed regions: [{"id":"r1","bbox":{"x1":100,"y1":100,"x2":300,"y2":140},"label":"paragraph"}]. Coordinates are normalized 0-1000, origin top-left`),
		),
		mcp.WithBoolean("trace",
			mcp.Description("Include a per-phase diagnostic trace in the response"),
		),
	)
	s.mcpServer.AddTool(regionCorrectFileTool, s.handleRegionCorrectFile)

	// Register page fragments file tool
	pageFragmentsFileTool := mcp.NewTool(
		"page_fragments_file",
		mcp.WithDescription("Return one PDF page's normalized text fragments, the raw input the correction pipeline works from"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, relative to the configured directory or absolute within it"),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("1-based page number"),
		),
	)
	s.mcpServer.AddTool(pageFragmentsFileTool, s.handlePageFragmentsFile)

	// Register server info tool
	regionServerInfoTool := mcp.NewTool(
		"region_server_info",
		mcp.WithDescription("Get server information, available tools, and usage guidance"),
	)
	s.mcpServer.AddTool(regionServerInfoTool, s.handleRegionServerInfo)
}

// Handler functions
func (s *Server) handleRegionCorrectFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	regionsJSON, err := request.RequireString("regions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var regions []refine.Region
	if err := json.Unmarshal([]byte(regionsJSON), &regions); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid regions JSON: %v", err)), nil
	}
	if len(regions) == 0 {
		return mcp.NewToolResultError("regions must be a non-empty JSON array"), nil
	}

	trace := request.GetBool("trace", false)

	req := service.RegionCorrectFileRequest{
		Path:    path,
		Page:    page,
		Regions: regions,
		Trace:   trace,
	}
	result, err := s.regionService.RegionCorrectFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handlePageFragmentsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.PageFragmentsFileRequest{Path: path, Page: page}
	result, err := s.regionService.PageFragmentsFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatPageFragmentsFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleRegionServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseText := s.formatServerInfo()
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatPageFragmentsFileResult(result *service.PageFragmentsFileResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page %d of %d: %s\n", result.Page, result.PageCount, result.Path)
	fmt.Fprintf(&b, "Native size: %.1f x %.1f points\n", result.Width, result.Height)
	fmt.Fprintf(&b, "Fragments: %d (coordinates normalized 0-1000, origin top-left)\n", len(result.Fragments))

	if len(result.Fragments) > 0 {
		b.WriteString("\n")
		for i, f := range result.Fragments {
			fmt.Fprintf(&b, "%d. [%.1f, %.1f, %.1f, %.1f] %q", i+1, f.X, f.Y, f.X+f.Width, f.Y+f.Height, f.Str)
			if f.SymbolFont {
				b.WriteString(" (symbol font)")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *Server) formatServerInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	fmt.Fprintf(&b, "PDF Directory: %s\n", s.regionService.BaseDir())
	fmt.Fprintf(&b, "Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	fmt.Fprintf(&b, "Min Region Gap: %g (normalized units)\n\n", s.config.MinRegionGap)

	b.WriteString("Available Tools:\n")
	b.WriteString("\n• region_correct_file\n")
	b.WriteString("  Corrects AI-proposed region boxes against the page's text layer and\n")
	b.WriteString("  extracts each region's text in reading order. Boxes are expanded to\n")
	b.WriteString("  cover partially clipped lines, tightened around owned text, separated\n")
	b.WriteString("  vertically and horizontally, and split into columns where the layout\n")
	b.WriteString("  supports it.\n")
	b.WriteString("  Parameters: path (string), page (number), regions (JSON string), trace (boolean, optional)\n")
	b.WriteString("\n• page_fragments_file\n")
	b.WriteString("  Lists one page's normalized text fragments, the exact input the\n")
	b.WriteString("  correction pipeline sees. Useful for debugging region proposals.\n")
	b.WriteString("  Parameters: path (string), page (number)\n")
	b.WriteString("\n• region_server_info\n")
	b.WriteString("  This information.\n")

	b.WriteString("\nCoordinate space: both axes run 0-1000 regardless of physical page\n")
	b.WriteString("size, origin at the top-left, y growing downward.\n")
	return b.String()
}

// Run starts the MCP server over stdio
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting region correction MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.regionService.BaseDir())
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
