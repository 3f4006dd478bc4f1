// Command batchsim replays synthetic scenes through the drawbatch batching
// engine and reports draw-call counts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/andrew-d/drawbatch/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
