// Package server serves the signing tools over the Model Context Protocol.
package server

import (
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server wraps an MCP server with the signing tools registered.
type Server struct {
	mcpServer *mcpserver.MCPServer
	config    *Config
}

// NewServer creates an MCP server exposing every tool in mcp.Tools.
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mcpServer := mcpserver.NewMCPServer(config.Name, config.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithToolHandlerMiddleware(logging(config.Logger)),
		mcpserver.WithToolHandlerMiddleware(timeout(config.Timeout)),
	)
	mcpServer.AddTools(tools()...)

	return &Server{
		mcpServer: mcpServer,
		config:    config,
	}
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer, mcpserver.WithStateLess(s.config.Stateless))
}

// Start serves the MCP endpoint on addr.
func (s *Server) Start(addr string) error {
	s.config.Logger.Info("starting MCP server", "addr", addr, "tools", len(s.mcpServer.ListTools()))
	return http.ListenAndServe(addr, s.Handler())
}

// MCPServer returns the underlying MCP server, for stdio or in-process use.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}
