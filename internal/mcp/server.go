package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/service"
)

// MCPServer exposes the question pipeline to LLM clients over MCP.
type MCPServer struct {
	queryService *service.QueryService
	server       *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(queryService *service.QueryService) *MCPServer {
	s := server.NewMCPServer(
		"Ledger-Gateway MCP Server",
		"1.0.0",
	)

	mcpServer := &MCPServer{
		queryService: queryService,
		server:       s,
	}

	mcpServer.registerTools()

	return mcpServer
}

func (m *MCPServer) registerTools() {
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Answer a natural language question about the connected ledger data"),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
		mcp.WithNumber("timeout", mcp.Description("Query timeout in seconds, default 30")))
	m.server.AddTool(askTool, m.handleAsk)

	listTablesTool := mcp.NewTool("list_tables",
		mcp.WithDescription("List every table and column of the connected source"))
	m.server.AddTool(listTablesTool, m.handleListTables)

	refreshSchemaTool := mcp.NewTool("refresh_schema",
		mcp.WithDescription("Re-introspect the connected source and swap the schema snapshot"))
	m.server.AddTool(refreshSchemaTool, m.handleRefreshSchema)
}

// handleAsk handles the ask tool call
func (m *MCPServer) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := mcp.ParseString(request, "question", "")
	if question == "" {
		return nil, fmt.Errorf("question parameter is required")
	}
	timeout := int(mcp.ParseInt(request, "timeout", 30))

	resp := m.queryService.Ask(ctx, &model.AskRequest{
		Question: question,
		Timeout:  timeout,
	})

	jsonResp, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(jsonResp)),
		},
	}, nil
}

// handleListTables handles the list_tables tool call
func (m *MCPServer) handleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog := m.queryService.Catalog()

	tables := make([]map[string]interface{}, 0, len(catalog.Tables()))
	for _, name := range catalog.Tables() {
		table, ok := catalog.Table(name)
		if !ok {
			continue
		}
		tables = append(tables, map[string]interface{}{
			"name":    table.Name,
			"columns": table.Columns,
			"numeric": table.Numeric,
		})
	}

	response := map[string]interface{}{
		"tables": tables,
		"count":  len(tables),
	}

	jsonResp, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(jsonResp)),
		},
	}, nil
}

// handleRefreshSchema handles the refresh_schema tool call
func (m *MCPServer) handleRefreshSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := m.queryService.RefreshSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh schema: %w", err)
	}

	response := map[string]interface{}{
		"refreshed": true,
		"tables":    m.queryService.Catalog().Tables(),
	}

	jsonResp, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(jsonResp)),
		},
	}, nil
}

// StartStdio starts the MCP server using stdio transport
func (m *MCPServer) StartStdio() error {
	return server.ServeStdio(m.server)
}
