// Package mcptools exposes clause explanation, risk analysis and summarization
// as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"legallens-backend/internal/analyses"
	"legallens-backend/internal/shared/telemetry"
)

const (
	ToolExplainClause     = "explain_clause"
	ToolAnalyzeRisks      = "analyze_risks"
	ToolSummarizeDocument = "summarize_document"
)

type ExplainInput struct {
	Clause string `json:"clause" jsonschema:"clause or legal term to explain, at most 100 characters"`
}

type DocumentInput struct {
	Text string `json:"text" jsonschema:"agreement text, at most 10000 characters"`
}

// Tools adapts the analysis service to MCP tool handlers.
type Tools struct {
	Analyses *analyses.Service
}

// NewServer builds an MCP server with every tool registered.
func NewServer(svc *analyses.Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "legallens",
		Version: version,
	}, nil)
	(&Tools{Analyses: svc}).Register(server)
	return server
}

// Register adds the tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolExplainClause,
		Description: "Explain a rental agreement clause or legal term from the local knowledge base.",
	}, t.ExplainClause)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAnalyzeRisks,
		Description: "Scan rental agreement text for risky clauses and list important clauses it omits.",
	}, t.AnalyzeRisks)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSummarizeDocument,
		Description: "Summarize rental agreement text into its key points.",
	}, t.SummarizeDocument)
}

func (t *Tools) ExplainClause(ctx context.Context, req *mcp.CallToolRequest, in ExplainInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Analyses.Explain(ctx, in.Clause)
	if err != nil {
		return toolError(ToolExplainClause, err), nil, nil
	}
	return jsonResult(ToolExplainClause, res), nil, nil
}

func (t *Tools) AnalyzeRisks(ctx context.Context, req *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Analyses.Risks(ctx, in.Text)
	if err != nil {
		return toolError(ToolAnalyzeRisks, err), nil, nil
	}
	return jsonResult(ToolAnalyzeRisks, res), nil, nil
}

func (t *Tools) SummarizeDocument(ctx context.Context, req *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Analyses.Summarize(ctx, in.Text)
	if err != nil {
		return toolError(ToolSummarizeDocument, err), nil, nil
	}
	return jsonResult(ToolSummarizeDocument, res), nil, nil
}

func jsonResult(tool string, v any) *mcp.CallToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return toolError(tool, err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
	}
}

func toolError(tool string, err error) *mcp.CallToolResult {
	msg := "internal error"
	switch {
	case errors.Is(err, analyses.ErrEmptyClause):
		msg = analyses.MessageEmptyClause
	case errors.Is(err, analyses.ErrInvalidClause):
		msg = analyses.MessageInvalidClause
	case errors.Is(err, analyses.ErrInvalidDocument):
		msg = analyses.MessageInvalidDocument
	default:
		telemetry.Error("mcp.tool_failed", map[string]any{"tool": tool, "error": err.Error()})
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
