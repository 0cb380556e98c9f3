package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go-jobboard-backend/internal/console"
)

func main() {
	server := flag.String("server", envOr("JOBBOARD_URL", "http://localhost:8080"), "job board API base URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := console.NewApp(console.NewClient(*server), os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "console:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
