// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes portfolio content tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/brijesht/folio/internal/content"
	"github.com/brijesht/folio/internal/media"
)

// Server wraps the MCP server with portfolio tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *content.Service
	uploader *media.Uploader
}

// New creates a new MCP server with all portfolio tools registered.
// uploader may be nil when no media host is configured; the
// upload_asset tool then reports uploads as unavailable.
func New(svc *content.Service, uploader *media.Uploader) *Server {
	s := &Server{svc: svc, uploader: uploader}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all portfolio projects in display order."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new portfolio project."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Project title")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Project description")),
		mcp.WithString("tech_stack", mcp.Description("Comma-separated technology list")),
		mcp.WithString("image_url", mcp.Description("Hosted image URL")),
		mcp.WithString("live_url", mcp.Description("Live deployment URL")),
		mcp.WithString("github_url", mcp.Description("Source repository URL")),
		mcp.WithNumber("display_order", mcp.Description("Position in the projects grid")),
		mcp.WithBoolean("is_featured", mcp.Description("Show on the featured row")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("list_skills",
		mcp.WithDescription("List all skills grouped by category."),
	), s.listSkills)

	s.mcp.AddTool(mcp.NewTool("list_experiences",
		mcp.WithDescription("List all work experiences, most recent first."),
	), s.listExperiences)

	s.mcp.AddTool(mcp.NewTool("list_messages",
		mcp.WithDescription("List contact-form messages, newest first."),
		mcp.WithBoolean("unread_only", mcp.Description("Only return unread messages")),
	), s.listMessages)

	s.mcp.AddTool(mcp.NewTool("mark_message_read",
		mcp.WithDescription("Mark a contact message as read or unread."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Message key")),
		mcp.WithBoolean("is_read", mcp.Description("Read state to set (default true)")),
	), s.markMessageRead)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Upload an image to the media host from an http(s) URL "+
			"or a base64 data URI. Returns the hosted URL to use as image_url."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL or data URI")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAsset)

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

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := content.Project{Title: title, Description: description}
	args := req.GetArguments()
	if v, ok := args["tech_stack"].(string); ok {
		p.TechStack = content.SplitCommaList(v)
	}
	if v, ok := args["image_url"].(string); ok {
		p.ImageURL = v
	}
	if v, ok := args["live_url"].(string); ok {
		p.LiveURL = v
	}
	if v, ok := args["github_url"].(string); ok {
		p.GitHubURL = v
	}
	if v, ok := args["display_order"].(float64); ok {
		p.DisplayOrder = int(v)
	}
	if v, ok := args["is_featured"].(bool); ok {
		p.IsFeatured = v
	}

	created, err := s.svc.CreateProject(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", created.Key)), nil
}

func (s *Server) listSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListSkills(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listExperiences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListExperiences(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unreadOnly, _ := req.GetArguments()["unread_only"].(bool)
	list, err := s.svc.ListMessages(ctx, unreadOnly)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(list, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) markMessageRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	isRead := true
	if v, ok := req.GetArguments()["is_read"].(bool); ok {
		isRead = v
	}
	if err := s.svc.SetMessageRead(ctx, key, isRead); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("message %s is_read=%t", key, isRead)), nil
}
