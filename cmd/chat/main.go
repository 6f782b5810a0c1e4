// Command chat is a terminal front end for the AI Code Helper backend. It
// streams answers from the chat endpoint and keeps the UI language and
// conversation memory id between turns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; system environment always applies
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n", failMark, err)
		os.Exit(1)
	}
}
