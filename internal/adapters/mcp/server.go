package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const (
	serverName    = "resume-router"
	serverVersion = "1.0.0"

	toolClassify = "classify_resume"
	toolRoute    = "route_resume"
)

// Server exposes classification and routing of local PDF files as MCP tools.
type Server struct {
	submitter ports.DocumentSubmitter
	previewer ports.ClassificationPreviewer
	logger    *slog.Logger
}

func NewServer(submitter ports.DocumentSubmitter, previewer ports.ClassificationPreviewer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		submitter: submitter,
		previewer: previewer,
		logger:    logger,
	}
}

func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool(toolClassify,
		mcp.WithDescription("Extract text from a local PDF resume and classify it as IT, HR or Multimedia without sending email"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute or working-directory relative path to the PDF file")),
	), s.classifyResume)

	srv.AddTool(mcp.NewTool(toolRoute,
		mcp.WithDescription("Classify a local PDF resume and email it to the recipient of its domain"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute or working-directory relative path to the PDF file")),
	), s.routeResume)

	return srv
}

// ServeStdio blocks until stdin is closed.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) classifyResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	upload, closeFn, err := openUpload(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer closeFn()

	preview, err := s.previewer.Preview(ctx, upload)
	if err != nil {
		s.logger.Warn("mcp_classify_failed", "file", upload.Filename, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}
	return jsonResult(preview)
}

func (s *Server) routeResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	upload, closeFn, err := openUpload(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer closeFn()

	run, err := s.submitter.RouteNow(ctx, upload)
	if err != nil {
		s.logger.Warn("mcp_route_rejected", "file", upload.Filename, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("routing rejected: %v", err)), nil
	}
	return jsonResult(run)
}

func openUpload(request mcp.CallToolRequest) (domain.Upload, func(), error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return domain.Upload{}, nil, fmt.Errorf("invalid arguments format")
	}
	path, _ := args["path"].(string)
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.Upload{}, nil, fmt.Errorf("path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.Upload{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return domain.Upload{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = file.Close()
		return domain.Upload{}, nil, fmt.Errorf("%s is a directory", path)
	}

	return domain.Upload{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Body:     file,
	}, func() { _ = file.Close() }, nil
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
