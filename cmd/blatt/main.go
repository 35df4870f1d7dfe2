package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// run executes the command tree and reports the failure on stderr. Cobra's
// own error printing is silenced, so this is the single place errors surface.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "blatt: %v\n", err)
		return 1
	}
	return 0
}
