package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/hackscout/internal/cli"
)

func main() {
	// Interrupts cancel the running crawl; partial results are still saved
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
