package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"campaigner/internal/logging"
	mcpserver "campaigner/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing compose_campaign,
list_presets and render_cascade.

The server monitors for parent process death and exits when its client
goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	f, err := cfg.Factory()
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(f, cfg.Seed)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel, 2*time.Second)

	logging.New("mcp").Info("starting campaigner MCP server over stdio (parent watchdog active)")
	return srv.Run(ctx)
}
