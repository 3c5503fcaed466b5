package main

// Serve the analysis tools over MCP stdio:
//   go run ./cmd/mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"legallens-backend/internal/bootstrap"
	"legallens-backend/internal/mcptools"
	"legallens-backend/internal/shared/config"
	"legallens-backend/internal/shared/telemetry"
)

var version = "1.0.0"

func main() {
	// stdout carries the protocol.
	telemetry.SetOutput(os.Stderr)

	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap build failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcptools.NewServer(app.AnalysesService, version)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		telemetry.Error("mcp server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
