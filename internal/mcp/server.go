package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/replaylab/demobridge/internal/history"
	"github.com/replaylab/demobridge/internal/logging"
	"github.com/replaylab/demobridge/internal/wrapper"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
	DB      *history.Database
	Logger  logging.Logger
}

// New builds the MCP server exposing the wrapper module. The server
// registers exactly one tool, parse, whose single schema argument is
// the positional args array: arity and type checking belong to the
// call adapter, not the binding layer.
func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		wrapper.ModuleName,
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	toolDefinitions := map[string]mcp.Tool{
		"parse": mcp.NewTool("parse",
			mcp.WithDescription("Parse a demo file. Takes the nine positional arguments "+
				"[dem_path, parse_rate, parse_frames, trade_time, round_buy, damages_rolled, "+
				"demo_id, json_indentation, outpath] and returns the parser's result."),
			mcp.WithArray("args",
				mcp.Required(),
				mcp.Description("Positional argument tuple; exactly nine values in fixed order."),
			),
		),
	}

	for name, adapter := range cfg.ToolAdapters {
		tool := toolDefinitions[name]
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
		DB:      cfg.Database,
		Logger:  cfg.Logger,
	}
}

func (s *Server) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.Logger.Error(err, "closing database")
		}
	}
}
