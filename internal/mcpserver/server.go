// Package mcpserver exposes the dispatch function catalog as a Model Context
// Protocol server, so external MCP hosts can drive the same backend operations
// the voice agent uses. Every tool call is routed through the dispatch bridge;
// results are the bridge's speakable strings wrapped as text content.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/novanode-ai/callbridge/internal/bridge"
	"github.com/novanode-ai/callbridge/internal/tools"
)

// serverName identifies this server to connecting MCP clients.
const serverName = "callbridge"

// serverVersion is reported during the MCP handshake.
const serverVersion = "1.0.0"

// Server wraps an MCP server whose tool catalogue mirrors [tools.Catalog].
type Server struct {
	srv *mcpsdk.Server
	log *slog.Logger
}

// New creates a Server delegating every tool call to b. All catalog entries
// are registered regardless of agent mode; mode scoping only applies to voice
// sessions, an MCP client gets the full surface.
func New(b *bridge.Bridge, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	srv := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: serverVersion},
		nil,
	)

	for _, spec := range tools.Catalog() {
		schema, err := inputSchema(spec)
		if err != nil {
			return nil, fmt.Errorf("mcpserver: schema for %q: %w", spec.Name, err)
		}
		srv.AddTool(&mcpsdk.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: schema,
		}, toolHandler(b, log, spec.Name))
	}

	return &Server{srv: srv, log: log}, nil
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server listening on stdio", "tools", len(tools.Catalog()))
	return s.Serve(ctx, &mcpsdk.StdioTransport{})
}

// Serve runs the server over an arbitrary transport. Used by Run and by tests
// driving in-memory transports.
func (s *Server) Serve(ctx context.Context, t mcpsdk.Transport) error {
	if err := s.srv.Run(ctx, t); err != nil {
		return fmt.Errorf("mcpserver: %w", err)
	}
	return nil
}

// toolHandler adapts one catalog entry to the SDK handler signature. The
// bridge folds all failures into speakable strings, so the handler itself
// never reports a tool error; only unmarshalable argument payloads do.
func toolHandler(b *bridge.Bridge, log *slog.Logger, name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		args := "{}"
		if len(req.Params.Arguments) > 0 {
			args = string(req.Params.Arguments)
		}

		log.Debug("mcp tool call", "tool", name)
		out := b.Invoke(ctx, bridge.CallRequest{Name: name, Arguments: args})

		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: out}},
		}, nil
	}
}

// inputSchema converts a spec's parameter map into the SDK's schema type via
// a JSON round trip, mirroring how schemas travel on the wire anyway.
func inputSchema(spec tools.Spec) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(spec.Definition().Parameters)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
