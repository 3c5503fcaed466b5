package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legallens-backend/internal/analyses"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/risks"
)

func newTools(t *testing.T) *Tools {
	t.Helper()
	holder := knowledge.NewHolder(knowledge.EmbeddedSource{})
	_, err := holder.Reload(context.Background())
	require.NoError(t, err)
	return &Tools{Analyses: &analyses.Service{KB: holder, Analyzer: risks.New(risks.DefaultSeverityTable())}}
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestExplainClauseTool(t *testing.T) {
	tools := newTools(t)
	res, _, err := tools.ExplainClause(context.Background(), nil, ExplainInput{Clause: "Lock-in Period"})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &payload))
	assert.Equal(t, "exact", payload["match_type"])
	assert.Equal(t, "lock-in period", payload["clause"])
}

func TestExplainClauseToolRejectsInvalid(t *testing.T) {
	tools := newTools(t)
	res, _, err := tools.ExplainClause(context.Background(), nil, ExplainInput{Clause: strings.Repeat("x", 101)})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, analyses.MessageInvalidClause, textOf(t, res))
}

func TestAnalyzeRisksTool(t *testing.T) {
	tools := newTools(t)
	res, _, err := tools.AnalyzeRisks(context.Background(), nil, DocumentInput{Text: "Subletting is banned. Guests need approval."})
	require.NoError(t, err)

	var payload struct {
		TotalRisks int    `json:"total_risks"`
		RiskScore  string `json:"risk_score"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &payload))
	assert.Equal(t, 2, payload.TotalRisks)
	assert.Equal(t, "LOW", payload.RiskScore)

	res, _, err = tools.AnalyzeRisks(context.Background(), nil, DocumentInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, analyses.MessageInvalidDocument, textOf(t, res))
}

func TestServerOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	tools := newTools(t)
	server := NewServer(tools.Analyses, "test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	list, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolExplainClause, ToolAnalyzeRisks, ToolSummarizeDocument}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolSummarizeDocument,
		Arguments: map[string]any{"text": "The rent is due monthly. The deposit is refundable."},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "Key points from the document")
}
