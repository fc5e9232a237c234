package mcp

import (
	"context"
	"os"
	"time"

	"agora/internal/logging"
)

// WatchParent monitors for parent process death in a background goroutine.
// When the parent PID changes (the editor host disconnected or restarted),
// it calls cancelFn to trigger graceful shutdown, preventing zombie server
// processes.
//
// This must NOT read from stdin: the MCP SDK's StdioTransport owns stdin
// exclusively, and stealing bytes would corrupt the JSON-RPC stream.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	log := logging.New("mcp-watchdog")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, initiating shutdown", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
