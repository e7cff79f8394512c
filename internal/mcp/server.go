package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nexusai/console/internal/store"
)

type Server struct {
	mcpServer *server.MCPServer
	store     *store.Store
}

func NewServer(st *store.Store) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Nexus Console",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		store: st,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_tenants",
			mcp.WithDescription("List all loaded client workspaces with their credentials and output routes"),
		),
		s.handleListTenants,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"transform_payload",
			mcp.WithDescription("Run the AI transformation preview for the active workspace, mapping its internal schema to its output template"),
		),
		s.handleTransformPayload,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"dispatch_route",
			mcp.WithDescription("Send a test payload through an output route and record the execution"),
			mcp.WithString("route_id", mcp.Required(), mcp.Description("The ID of the output route")),
			mcp.WithString("variables", mcp.Description("JSON object of placeholder values to render into the route template")),
		),
		s.handleDispatchRoute,
	)
}

func (s *Server) handleListTenants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tenants := s.store.Tenants()

	jsonBytes, _ := json.Marshal(tenants)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleTransformPayload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.store.TransformPreview(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to transform: %v", err)), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleDispatchRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	routeID, ok := args["route_id"].(string)
	if !ok || routeID == "" {
		return mcp.NewToolResultError("Missing required parameter: route_id"), nil
	}

	vars := map[string]string{}
	if raw, ok := args["variables"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &vars); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid variables JSON: %v", err)), nil
		}
	}

	execution, err := s.store.DispatchRoute(ctx, routeID, vars)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to dispatch: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(execution)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
