// add-artifacts attaches model info, requirements, metrics, model config and
// the pickled model to existing runs of an MLflow experiment.
//
// Usage:
//
//	add-artifacts [--experiment=<name>] [--tracking-uri=<url>] [--models-dir=<path>] [--config=<file>]
//
// Every flag can also be set through the environment variable named in its help.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
