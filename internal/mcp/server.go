// Package mcp exposes ontology decisions as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/interpret"
)

// Server wraps the MCP SDK server around a decision orchestrator.
type Server struct {
	mcpServer *mcpsdk.Server
	orch      *decide.Orchestrator
	oracle    interpret.Oracle
	logger    *slog.Logger
}

// New creates an MCP server. A nil oracle makes ontology_interpret report
// an error result.
func New(orch *decide.Orchestrator, oracle interpret.Oracle, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		orch:   orch,
		oracle: oracle,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "ontoguard",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all ontoguard tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ontology_check",
		Description: "Record an agent action (agent type, capability, tool, risk level) in the knowledge graph and return danger or caution.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ontology_interpret",
		Description: "Interpret a free-text action description, record it in the knowledge graph and return danger or caution.",
	}, s.handleInterpret)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ontology_graph",
		Description: "Return every concept, instance and relationship in the knowledge graph.",
	}, s.handleGraph)
}
