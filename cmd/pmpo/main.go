// Command pmpo builds pMPO models from labelled descriptor data, scores
// entities with a saved model and serves a model over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
