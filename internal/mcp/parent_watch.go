package mcp

import (
	"context"
	"os"
	"time"

	"campaigner/internal/logging"
)

// WatchParent cancels ctx through cancel once the parent process exits, so
// a server whose client died does not linger. It never reads stdin, which
// belongs to the stdio transport.
func WatchParent(ctx context.Context, cancel context.CancelFunc, every time.Duration) {
	ppid := os.Getppid()
	log := logging.New("mcp")
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if os.Getppid() != ppid {
					log.Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
