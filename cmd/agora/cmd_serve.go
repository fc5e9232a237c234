package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"agora/internal/logging"
	mcpserver "agora/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the debate tools
(analyze_readiness, create_debate, start_debate, get_debate, ...).

The server monitors for parent process death. When the editor host
disconnects or restarts, the server self-terminates to prevent zombie
processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcpserver.NewServer(svc)
	defer srv.Shutdown()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("serve").Info("starting agora MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
