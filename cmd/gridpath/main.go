// Command gridpath runs the grid pathfinding visualizer: one-shot searches in
// the terminal, an interactive TUI, or an HTTP/websocket server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gridpath:", err)
		stop()
		os.Exit(1)
	}
}
