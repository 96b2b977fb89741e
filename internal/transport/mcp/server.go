package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	agentsvc "github.com/alanyang/agent-zones/internal/service/agent"
	azsvc "github.com/alanyang/agent-zones/internal/service/availabilityzone"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// Tools are registered in tools.go.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(agentSvc *agentsvc.Service, azSvc *azsvc.Service) *Server {
	hooks := &mcpserver.Hooks{}
	hooks.OnRegisterSession = append(hooks.OnRegisterSession, onSessionOpen)
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"agent-zones",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	RegisterTools(mcpSrv, agentSvc, azSvc)

	return &Server{httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv)}
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func onSessionOpen(ctx context.Context, session mcpserver.ClientSession) {
	slog.DebugContext(ctx, "mcp: session opened", "session_id", session.SessionID())
}

func onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	slog.DebugContext(ctx, "mcp: session closed", "session_id", session.SessionID())
}
