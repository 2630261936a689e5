// Package mcp exposes the habit engine as Model Context Protocol tools.
package mcp

import (
	"context"

	"github.com/brk3/habitbattles/internal/engine"
	"github.com/brk3/habitbattles/pkg/versioninfo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server serves one user's habits over MCP.
type Server struct {
	mcpServer *mcp.Server
	engine    *engine.Engine
	userID    string
	timezone  string
}

func NewServer(e *engine.Engine, userID, timezone string) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    "habits",
			Version: versioninfo.Version,
		}, nil),
		engine:   e,
		userID:   userID,
		timezone: timezone,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until ctx is done or the client hangs up.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
